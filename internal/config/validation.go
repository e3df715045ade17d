package config

import (
	"fmt"
	"strconv"
	"time"

	"ramble/internal/app/whisper"
)

// Validate fails fast on settings the serve command cannot start
// with. Messages name the environment key so the fix is obvious.
func (c *Config) Validate() error {
	if err := validatePort(c.Port); err != nil {
		return err
	}
	if err := validateConcurrency(c.CPUSlots, "RAMBLE_CPU_SLOTS"); err != nil {
		return err
	}
	if err := validateTimeout(c.ConvertTimeout, "RAMBLE_CONVERT_TIMEOUT"); err != nil {
		return err
	}
	if err := validateTimeout(c.Cache.TTL, "RAMBLE_CACHE_TTL"); err != nil {
		return err
	}

	if !whisper.IsKnownModel(c.DefaultModel) {
		return fmt.Errorf("RAMBLE_DEFAULT_MODEL: unknown model %q (choose from %v)",
			c.DefaultModel, whisper.ModelIDs())
	}

	switch c.Device {
	case "auto", "cpu", "cuda":
	default:
		return fmt.Errorf("RAMBLE_DEVICE: %q is not a device mode (want auto, cpu or cuda)", c.Device)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("RAMBLE_DB_PATH is required for the sqlite driver")
		}
	case "postgres":
	default:
		return fmt.Errorf("RAMBLE_DB_DRIVER: %q is not a driver (want sqlite or postgres)", c.Database.Driver)
	}

	switch c.WeightsStore.Backend {
	case "off":
	case "minio":
		if c.WeightsStore.AccessKey == "" || c.WeightsStore.SecretKey == "" {
			return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when RAMBLE_WEIGHTS_STORE=minio")
		}
	default:
		return fmt.Errorf("RAMBLE_WEIGHTS_STORE: %q is not a backend (want off or minio)", c.WeightsStore.Backend)
	}

	return nil
}

func validatePort(port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("RAMBLE_PORT: %q is not a port", port)
	}
	return nil
}

func validateConcurrency(slots int, name string) error {
	if slots < 1 {
		return fmt.Errorf("%s must be positive", name)
	}
	if slots > 64 {
		return fmt.Errorf("%s too high (max 64)", name)
	}
	return nil
}

func validateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}
