package repository

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"slices"
	"time"
)

var (
	ErrInvalidPageToken = errors.New("page token is invalid")
	ErrPageTokenScope   = errors.New("page token was issued for another filter")
	ErrInvalidPageKey   = errors.New("page token key holds an unsupported field")
)

const (
	DefaultPaginationLimit = 50
	maxPaginationLimit     = 1000
)

// Paginator orders a listing newest first and resumes it after Token.
type Paginator struct {
	Token       *PageToken
	OrderFields []QueryField
}

// PageToken points at the last record of a page.
// Scope is the filter of the listing the token continues.
type PageToken struct {
	Scope         string       `json:"scope,omitempty"`
	LastCreatedAt time.Time    `json:"lastCreatedAt"`
	LastKey       CompositeKey `json:"lastKey"`
}

// Encode returns the token in URL safe base64, fit for command line arguments.
func (p PageToken) Encode() (string, error) {
	if err := p.validate(); err != nil {
		return "", err
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func (p PageToken) validate() error {
	if len(p.LastKey) == 0 {
		return ErrInvalidPageKey
	}

	for column := range p.LastKey {
		if !slices.Contains([]QueryField{IDField, UUIDField, CreatedAtField}, column) {
			return ErrInvalidPageKey
		}
	}

	return nil
}

// DecodePageToken reads a token and checks that it was issued for scope.
func DecodePageToken(encoded, scope string) (*PageToken, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(raw) == 0 {
		return nil, ErrInvalidPageToken
	}

	token := &PageToken{}
	if err := json.Unmarshal(raw, token); err != nil {
		return nil, ErrInvalidPageToken
	}

	if err := token.validate(); err != nil {
		return nil, err
	}

	if token.Scope != scope {
		return nil, ErrPageTokenScope
	}

	return token, nil
}
