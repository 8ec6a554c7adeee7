package seeder

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
)

const (
	AlphaNumeric      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	UpperAlphaNumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Digits            = "0123456789"
)

// Sampler draws field values from a single seeded source. The gofakeit faker
// shares that source, so one seed reproduces a whole run. A Sampler is not
// safe for concurrent use.
type Sampler struct {
	rng   *rand.Rand
	faker *gofakeit.Faker
}

func NewSampler(seed uint64) *Sampler {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Sampler{
		rng:   rand.New(src),
		faker: gofakeit.NewFaker(src, false),
	}
}

func (s *Sampler) Rand() *rand.Rand {
	return s.rng
}

func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

func (s *Sampler) Bool() bool {
	return s.rng.IntN(2) == 1
}

// IntRange returns a value in [lo, hi].
func (s *Sampler) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo+1)
}

func (s *Sampler) Int64Range(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Int64N(hi-lo+1)
}

func (s *Sampler) Token(alphabet string, length int) string {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(alphabet[s.rng.IntN(len(alphabet))])
	}
	return b.String()
}

// TimestampWithOffset returns an instant in [start, end] at microsecond
// granularity. With randomOffset the instant is presented in a fixed zone of
// a whole-hour offset drawn from [minOffsetH, maxOffsetH], chosen without
// regard to the date; otherwise it stays in UTC.
func (s *Sampler) TimestampWithOffset(start, end time.Time, minOffsetH, maxOffsetH int, randomOffset bool) time.Time {
	span := end.Sub(start).Microseconds()
	t := start.UTC().Truncate(time.Microsecond)
	if span > 0 {
		t = t.Add(time.Duration(s.rng.Int64N(span+1)) * time.Microsecond)
	}
	if !randomOffset {
		return t
	}
	offset := s.IntRange(minOffsetH, maxOffsetH)
	return t.In(time.FixedZone(fmt.Sprintf("UTC%+03d", offset), offset*3600))
}

func (s *Sampler) FullName() string {
	return s.faker.Name()
}

func (s *Sampler) Login() string {
	return s.faker.Username()
}

func (s *Sampler) Country() string {
	return s.faker.Country()
}

// Birthday returns a date of birth for someone aged between minAge and maxAge at now.
func (s *Sampler) Birthday(minAge, maxAge int, now time.Time) time.Time {
	earliest := now.AddDate(-maxAge-1, 0, 1)
	latest := now.AddDate(-minAge, 0, 0)
	d := s.faker.DateRange(earliest, latest)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Maybe returns nil with probability nullProbability, otherwise gen's value.
func Maybe[T any](s *Sampler, nullProbability float64, gen func() T) *T {
	if s.rng.Float64() < nullProbability {
		return nil
	}
	v := gen()
	return &v
}

func Choice[T any](s *Sampler, pool []T) (T, error) {
	var zero T
	if len(pool) == 0 {
		return zero, &InsufficientPoolError{Requested: 1, Available: 0}
	}
	return pool[s.rng.IntN(len(pool))], nil
}

// Sample draws k distinct elements of pool without replacement. pool is not modified.
func Sample[T any](s *Sampler, pool []T, k int) ([]T, error) {
	if k < 0 || k > len(pool) {
		return nil, &InsufficientPoolError{Requested: k, Available: len(pool)}
	}
	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	out := make([]T, k)
	for i := 0; i < k; i++ {
		j := i + s.rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
		out[i] = pool[idx[i]]
	}
	return out, nil
}
