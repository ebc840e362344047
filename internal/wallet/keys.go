package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"solrisk/pkg/crypto"
	"solrisk/pkg/utils"
)

// Ошибки разбора ключа
var (
	ErrEmptySigningKey   = errors.New("signing key is empty")
	ErrInvalidSigningKey = errors.New("invalid signing key")
)

// Identity - подписывающая личность кошелька.
// Приватный ключ живёт только в памяти процесса; на диске и в env
// он хранится зашифрованным AES-256-GCM.
type Identity struct {
	privateKey ed25519.PrivateKey
}

// LoadIdentity расшифровывает signing key и разбирает его как ed25519.
//
// Принимает hex 32-байтового seed или hex полного 64-байтового ключа.
// encryptionKey - 32-байтовый AES ключ из конфигурации.
func LoadIdentity(encryptedKey string, encryptionKey []byte) (*Identity, error) {
	if encryptedKey == "" {
		return nil, ErrEmptySigningKey
	}

	plaintext, err := crypto.Decrypt(encryptedKey, encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("decrypt signing key: %w", err)
	}

	return ParseIdentity(plaintext)
}

// ParseIdentity разбирает расшифрованный hex ключ
func ParseIdentity(keyHex string) (*Identity, error) {
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid hex", ErrInvalidSigningKey)
	}

	switch len(raw) {
	case ed25519.SeedSize:
		return &Identity{privateKey: ed25519.NewKeyFromSeed(raw)}, nil
	case ed25519.PrivateKeySize:
		return &Identity{privateKey: ed25519.PrivateKey(raw)}, nil
	default:
		return nil, fmt.Errorf("%w: expected %d or %d bytes, got %d",
			ErrInvalidSigningKey, ed25519.SeedSize, ed25519.PrivateKeySize, len(raw))
	}
}

// PublicKeyHex возвращает hex публичного ключа
func (id *Identity) PublicKeyHex() string {
	return hex.EncodeToString(id.privateKey.Public().(ed25519.PublicKey))
}

// Sign подписывает произвольное сообщение
func (id *Identity) Sign(message []byte) []byte {
	return ed25519.Sign(id.privateKey, message)
}

// LoadIdentityOrDegrade пытается загрузить identity; при любой ошибке
// логирует warn и возвращает nil. Мониторинговая поверхность должна
// подниматься даже с битым ключом - балансовые запросы ключа не требуют.
func LoadIdentityOrDegrade(encryptedKey string, encryptionKey []byte, log *utils.Logger) *Identity {
	if log == nil {
		log = utils.GetGlobalLogger()
	}

	if encryptedKey == "" {
		log.Info("No signing key configured, wallet runs identity-less")
		return nil
	}

	identity, err := LoadIdentity(encryptedKey, encryptionKey)
	if err != nil {
		log.Warn("Failed to load signing key, wallet runs identity-less", utils.Err(err))
		return nil
	}

	log.Info("Signing identity loaded", utils.String("public_key", identity.PublicKeyHex()))
	return identity
}
