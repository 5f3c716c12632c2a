package vault

import (
	"fmt"

	"gbit-go/internal/config"
	"gbit-go/internal/gbit"
)

// NewVaultFromConfig creates a Vault implementation based on the vault
// config type. Type "none" yields no vault (nil, nil): database mirroring
// is disabled.
func NewVaultFromConfig(cfg config.VaultConfig) (gbit.Vault, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "memory":
		return NewMemoryVault(cfg.Name), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
		}
		return NewS3Vault(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region,
			cfg.S3AccessKey, cfg.S3SecretKey)
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.Name, cfg.FSVaultRoot)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
