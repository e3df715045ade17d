package models

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ramble/internal/app/client"
	"ramble/internal/app/whisper"
)

var endpoint string

func init() {
	Cmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "server endpoint (default $RAMBLE_ENDPOINT, then "+client.DefaultEndpoint+")")
}

// Cmd represents the models command
var Cmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalog of a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := client.New(client.Endpoint(endpoint)).Models(cmd.Context())
		if err != nil {
			return err
		}
		printCatalog(catalog)
		return nil
	},
}

func printCatalog(catalog *client.Catalog) {
	fmt.Printf("Device: %s    Default model: %s\n\n", catalog.CurrentDevice, catalog.Default)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tSIZE\tSPEED\tACCURACY\tVRAM")
	for _, id := range orderedIDs(catalog.Models) {
		info := catalog.Models[id]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", id, info.Size, info.Speed, info.Accuracy, info.VRAM)
	}
	w.Flush()
}

// orderedIDs sorts catalog entries smallest model first, with any ids
// this build does not know about at the end.
func orderedIDs(catalog map[string]client.ModelInfo) []string {
	rank := map[string]int{}
	for i, id := range whisper.ModelIDs() {
		rank[id] = i
	}

	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ri, iKnown := rank[ids[i]]
		rj, jKnown := rank[ids[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown:
			return true
		case jKnown:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
	return ids
}
