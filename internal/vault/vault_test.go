package vault

import (
	"bytes"
	"strings"
	"testing"

	"gbit-go/internal/config"
	"gbit-go/internal/gbit"
)

// vaultUnderTest exercises the Vault contract shared by every implementation.
func vaultUnderTest(t *testing.T, v gbit.Vault) {
	t.Helper()

	if err := v.ValidateSetup(); err != nil {
		t.Fatalf("ValidateSetup failed: %v", err)
	}

	version, err := v.Version("db")
	if err != nil {
		t.Fatalf("Version of absent item failed: %v", err)
	}
	if version != 0 {
		t.Errorf("absent item version = %d, want 0", version)
	}

	data := "snapshot bytes"
	if err := v.Put("db", strings.NewReader(data), int64(len(data)), 42); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	var buf bytes.Buffer
	if err := v.Get("db", &buf); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if buf.String() != data {
		t.Errorf("Get returned %q, want %q", buf.String(), data)
	}

	version, err = v.Version("db")
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 42 {
		t.Errorf("version = %d, want 42", version)
	}

	// Overwrite advances the version.
	updated := "newer snapshot"
	if err := v.Put("db", strings.NewReader(updated), int64(len(updated)), 43); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}
	buf.Reset()
	if err := v.Get("db", &buf); err != nil {
		t.Fatalf("Get after overwrite failed: %v", err)
	}
	if buf.String() != updated {
		t.Errorf("Get after overwrite returned %q", buf.String())
	}
	if version, _ = v.Version("db"); version != 43 {
		t.Errorf("version after overwrite = %d, want 43", version)
	}
}

func TestMemoryVault(t *testing.T) {
	vaultUnderTest(t, NewMemoryVault("test"))
}

func TestFileSystemVault(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault failed: %v", err)
	}
	vaultUnderTest(t, v)
}

func TestVaultSizeMismatch(t *testing.T) {
	v := NewMemoryVault("test")
	err := v.Put("db", strings.NewReader("short"), 100, 1)
	if err == nil {
		t.Fatal("Put with wrong size succeeded")
	}
}

func TestFileSystemVaultGetMissing(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault failed: %v", err)
	}
	var buf bytes.Buffer
	if err := v.Get("missing", &buf); err == nil {
		t.Fatal("Get of missing item succeeded")
	}
}

func TestNewVaultFromConfig(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		v, err := NewVaultFromConfig(config.VaultConfig{Type: "none"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != nil {
			t.Error("type none returned a vault")
		}
	})

	t.Run("memory", func(t *testing.T) {
		v, err := NewVaultFromConfig(config.VaultConfig{Type: "memory", Name: "m"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := v.(*MemoryVault); !ok {
			t.Errorf("got %T, want *MemoryVault", v)
		}
	})

	t.Run("filesystem", func(t *testing.T) {
		v, err := NewVaultFromConfig(config.VaultConfig{
			Type: "filesystem", Name: "f", FSVaultRoot: t.TempDir(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := v.(*FileSystemVault); !ok {
			t.Errorf("got %T, want *FileSystemVault", v)
		}
	})

	t.Run("filesystem without root", func(t *testing.T) {
		if _, err := NewVaultFromConfig(config.VaultConfig{Type: "filesystem"}); err == nil {
			t.Error("missing fs_vault_root accepted")
		}
	})

	t.Run("s3 without bucket", func(t *testing.T) {
		if _, err := NewVaultFromConfig(config.VaultConfig{Type: "s3"}); err == nil {
			t.Error("missing s3_bucket accepted")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewVaultFromConfig(config.VaultConfig{Type: "carrier-pigeon"}); err == nil {
			t.Error("unknown vault type accepted")
		}
	})
}
