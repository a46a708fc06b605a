package services

import (
	"strings"

	"stridestreak/internal/crypto"
	"stridestreak/internal/models"
)

// EncryptionService seals the user fields that are stored encrypted.
type EncryptionService struct {
	box *crypto.Box
}

func NewEncryptionService(encryptionKey, blindIndexKey []byte) (*EncryptionService, error) {
	box, err := crypto.NewBox(encryptionKey, blindIndexKey)
	if err != nil {
		return nil, err
	}
	return &EncryptionService{box: box}, nil
}

// normalizeEmail is applied before both sealing and indexing so that lookups
// are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailIndex is the blind index used to find a user by email.
func (s *EncryptionService) EmailIndex(email string) string {
	return s.box.BlindIndex(normalizeEmail(email))
}

// SealEmail sets u.Email to the ciphertext of email and fills the blind index.
func (s *EncryptionService) SealEmail(u *models.User, email string) error {
	sealed, index, err := s.box.SealIndexed(normalizeEmail(email))
	if err != nil {
		return err
	}
	u.Email = sealed
	u.EmailBlindIndex = index
	return nil
}

// OpenUser returns a copy of u with the email decrypted, ready for output.
func (s *EncryptionService) OpenUser(u models.User) (models.User, error) {
	email, err := s.box.Open(u.Email)
	if err != nil {
		return models.User{}, err
	}
	u.Email = email
	return u, nil
}
