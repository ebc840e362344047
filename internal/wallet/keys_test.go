package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"testing"

	"solrisk/pkg/crypto"
	"solrisk/pkg/utils"
)

// ============================================================
// Identity Tests
// ============================================================

func TestParseIdentityFromSeed(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	identity, err := ParseIdentity(hex.EncodeToString(seed))
	if err != nil {
		t.Fatalf("ParseIdentity returned error: %v", err)
	}

	wantKey := ed25519.NewKeyFromSeed(seed)
	wantPub := hex.EncodeToString(wantKey.Public().(ed25519.PublicKey))
	if identity.PublicKeyHex() != wantPub {
		t.Errorf("expected public key %s, got %s", wantPub, identity.PublicKeyHex())
	}
}

func TestParseIdentityFromFullKey(t *testing.T) {
	_, privateKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	identity, err := ParseIdentity(hex.EncodeToString(privateKey))
	if err != nil {
		t.Fatalf("ParseIdentity returned error: %v", err)
	}

	// Подпись проверяется оригинальным публичным ключом
	message := []byte("risk core identity check")
	signature := identity.Sign(message)
	if !ed25519.Verify(privateKey.Public().(ed25519.PublicKey), message, signature) {
		t.Error("signature does not verify against original key")
	}
}

func TestParseIdentityInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not hex", "zzzz"},
		{"wrong length", hex.EncodeToString(make([]byte, 16))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentity(tt.in)
			if !errors.Is(err, ErrInvalidSigningKey) {
				t.Errorf("expected ErrInvalidSigningKey, got %v", err)
			}
		})
	}
}

func TestLoadIdentityRoundTrip(t *testing.T) {
	encryptionKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(255 - i)
	}

	encrypted, err := crypto.Encrypt(hex.EncodeToString(seed), encryptionKey)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	identity, err := LoadIdentity(encrypted, encryptionKey)
	if err != nil {
		t.Fatalf("LoadIdentity returned error: %v", err)
	}

	wantKey := ed25519.NewKeyFromSeed(seed)
	if identity.PublicKeyHex() != hex.EncodeToString(wantKey.Public().(ed25519.PublicKey)) {
		t.Error("round-tripped identity has wrong public key")
	}
}

func TestLoadIdentityWrongEncryptionKey(t *testing.T) {
	keyA, _ := crypto.GenerateKey()
	keyB, _ := crypto.GenerateKey()

	encrypted, err := crypto.Encrypt(hex.EncodeToString(make([]byte, ed25519.SeedSize)), keyA)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	if _, err := LoadIdentity(encrypted, keyB); err == nil {
		t.Fatal("expected error with wrong encryption key")
	}
}

func TestLoadIdentityEmpty(t *testing.T) {
	_, err := LoadIdentity("", nil)
	if !errors.Is(err, ErrEmptySigningKey) {
		t.Fatalf("expected ErrEmptySigningKey, got %v", err)
	}
}

// ============================================================
// Degraded Mode Tests
// ============================================================

func TestLoadIdentityOrDegrade(t *testing.T) {
	log := utils.InitLogger(utils.LogConfig{Level: "error"})

	t.Run("empty key degrades", func(t *testing.T) {
		if got := LoadIdentityOrDegrade("", nil, log); got != nil {
			t.Error("expected nil identity for empty key")
		}
	})

	t.Run("garbage degrades", func(t *testing.T) {
		if got := LoadIdentityOrDegrade("not-a-ciphertext", make([]byte, 32), log); got != nil {
			t.Error("expected nil identity for undecryptable key")
		}
	})

	t.Run("valid key loads", func(t *testing.T) {
		encryptionKey, _ := crypto.GenerateKey()
		encrypted, err := crypto.Encrypt(hex.EncodeToString(make([]byte, ed25519.SeedSize)), encryptionKey)
		if err != nil {
			t.Fatalf("Encrypt failed: %v", err)
		}

		if got := LoadIdentityOrDegrade(encrypted, encryptionKey, log); got == nil {
			t.Error("expected identity for valid key")
		}
	})
}
