package transcribe

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"ramble/internal/app/client"
	"ramble/internal/app/util/files"
)

var (
	language   string
	endpoint   string
	segments   bool
	output     string
	model      string
	task       string
	noSpeakers bool
	parallel   int
)

func init() {
	Cmd.Flags().StringVarP(&language, "language", "l", "", "language code hint (e.g. en, es)")
	Cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "server endpoint (default $RAMBLE_ENDPOINT, then "+client.DefaultEndpoint+")")
	Cmd.Flags().BoolVarP(&segments, "segments", "s", false, "show segment details with speaker labels")
	Cmd.Flags().StringVarP(&output, "output", "o", "", "write the transcript text to a file (single input only)")
	Cmd.Flags().StringVarP(&model, "model", "m", "", "model to use (tiny, base, small, medium, large)")
	Cmd.Flags().StringVar(&task, "task", "", "transcribe or translate")
	Cmd.Flags().BoolVar(&noSpeakers, "no-speakers", false, "disable speaker detection")
	Cmd.Flags().IntVarP(&parallel, "parallel", "p", 2, "concurrent uploads for multi-file batches")
}

// Cmd represents the transcribe command
var Cmd = &cobra.Command{
	Use:   "transcribe <file|dir>...",
	Short: "Upload audio files to a running server and print transcripts",
	Long: `Upload audio files to a running server and print transcripts.

Directory arguments expand to the audio files inside them. Single files
print the full result. Multi-file batches upload in parallel behind a
progress bar and print every result at the end. The command exits
non-zero when any file fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: run,
}

// audioExtensions are the container types picked up when a directory is
// given instead of a file.
var audioExtensions = []string{".wav", ".mp3", ".m4a", ".ogg", ".flac", ".aac", ".webm"}

func run(cmd *cobra.Command, args []string) error {
	paths, err := expandArgs(args)
	if err != nil {
		return err
	}
	if output != "" && len(paths) != 1 {
		return fmt.Errorf("--output requires exactly one input file")
	}

	c := client.New(client.Endpoint(endpoint))
	opts := client.TranscribeOptions{
		Model:           model,
		Language:        language,
		Task:            task,
		DisableSpeakers: noSpeakers,
	}

	if len(paths) == 1 {
		return transcribeOne(cmd.Context(), c, paths[0], opts)
	}
	return transcribeBatch(cmd.Context(), c, paths, opts)
}

func expandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		var found []string
		for _, ext := range audioExtensions {
			matches, err := files.ListByExtension(arg, ext)
			if err != nil {
				return nil, err
			}
			found = append(found, matches...)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no audio files in %s", arg)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

func transcribeOne(ctx context.Context, c *client.Client, path string, opts client.TranscribeOptions) error {
	fmt.Printf("🎤 Uploading %s...\n", path)

	result, err := c.Transcribe(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	printTranscript(result)

	if output != "" {
		if err := os.WriteFile(output, []byte(result.Text), 0o644); err != nil {
			return err
		}
		fmt.Printf("\n💾 Saved to: %s\n", output)
	}
	return nil
}

type batchResult struct {
	path   string
	result *client.Transcript
	err    error
}

func transcribeBatch(ctx context.Context, c *client.Client, paths []string, opts client.TranscribeOptions) error {
	workers := parallel
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	progress := mpb.New(
		mpb.WithOutput(os.Stderr),
		mpb.WithRefreshRate(120*time.Millisecond),
		mpb.WithWaitGroup(&wg),
	)
	bar := progress.AddBar(int64(len(paths)),
		mpb.PrependDecorators(
			decor.Name("Transcribing ", decor.WC{W: len("Transcribing ") + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("(%d/%d)", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.NewPercentage("%.1f", decor.WCSyncSpace),
			decor.OnComplete(
				decor.EwmaETA(decor.ET_STYLE_GO, 30, decor.WCSyncWidth), " ✓ ",
			),
		),
	)

	results := make([]batchResult, len(paths))
	sem := make(chan bool, workers)
	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			sem <- true
			start := time.Now()
			result, err := c.Transcribe(ctx, path, opts)
			<-sem

			results[i] = batchResult{path: path, result: result, err: err}
			bar.EwmaIncrement(time.Since(start))
		}(i, path)
	}
	progress.Wait()

	failed := 0
	for _, br := range results {
		if br.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "❌ %s: %v\n", br.path, br.err)
			continue
		}
		fmt.Printf("\n🎤 %s\n", br.path)
		printTranscript(br.result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

func printTranscript(result *client.Transcript) {
	line := strings.Repeat("=", 60)
	fmt.Println("\n" + line)
	fmt.Println("🎤 TRANSCRIPTION RESULT")
	fmt.Println(line)
	fmt.Printf("\n📝 Text:\n%s\n", result.Text)
	fmt.Printf("\n🌍 Language: %s\n", result.Language)
	fmt.Printf("⏱️  Duration: %.1fs\n", result.DurationSeconds)
	fmt.Printf("🎯 Model: %s\n", result.Model)

	if segments && len(result.Segments) > 0 {
		fmt.Printf("\n📊 Segments (%d):\n", len(result.Segments))
		fmt.Println(strings.Repeat("-", 60))
		for _, seg := range result.Segments {
			fmt.Printf("[%6.2fs - %6.2fs] %s: %s\n", seg.Start, seg.End, seg.Speaker, seg.Text)
		}
	}
	fmt.Println(line)
}
