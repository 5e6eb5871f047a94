package tracknum

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/BearBump/ShipDesk/internal/apperr"
	"github.com/pkg/errors"
)

// Алфавит без визуально похожих символов (I и O исключены).
const (
	DefaultAlphabet    = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	DefaultLength      = 12
	DefaultMaxAttempts = 10
)

// ExistsFunc отвечает, занят ли номер другим отправлением.
type ExistsFunc func(ctx context.Context, trackingNumber string) (bool, error)

// Allocator генерирует трек-номера. Конфигурация неизменяемая, общего
// состояния между вызовами нет.
type Allocator struct {
	alphabet    string
	length      int
	maxAttempts int
}

func New() Allocator {
	return Allocator{
		alphabet:    DefaultAlphabet,
		length:      DefaultLength,
		maxAttempts: DefaultMaxAttempts,
	}
}

func NewWithConfig(alphabet string, length, maxAttempts int) Allocator {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if length <= 0 {
		length = DefaultLength
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return Allocator{alphabet: alphabet, length: length, maxAttempts: maxAttempts}
}

func (a Allocator) Length() int { return a.length }

func (a Allocator) MaxAttempts() int { return a.maxAttempts }

// Allocate подбирает номер, свободный на момент проверки. Резервирования
// нет: настоящая гарантия — уникальный индекс в базе при вставке.
func (a Allocator) Allocate(ctx context.Context, exists ExistsFunc) (string, error) {
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		candidate, err := a.Generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", errors.Wrap(err, "check tracking number")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", apperr.ErrAllocationExhausted
}

// Generate возвращает один случайный номер без проверки занятости.
func (a Allocator) Generate() (string, error) {
	max := big.NewInt(int64(len(a.alphabet)))
	buf := make([]byte, a.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", errors.Wrap(err, "random index")
		}
		buf[i] = a.alphabet[n.Int64()]
	}
	return string(buf), nil
}
