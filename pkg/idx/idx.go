// Package idx mints the ULIDs that key accounts, phone sessions, refresh
// tokens, signing keys and requests.
package idx

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ID is a canonical (upper case) ULID string. IDs sort by mint time.
type ID string

const Zero ID = ""

var ErrInvalid = errors.New("idx: invalid ulid")

// source is shared so IDs minted in the same millisecond still sort in
// mint order.
var source = struct {
	sync.Mutex
	entropy io.Reader
}{entropy: ulid.Monotonic(rand.Reader, 0)}

func New() ID { return NewAt(time.Now()) }

// NewAt mints an ID stamped with t.
func NewAt(t time.Time) ID {
	source.Lock()
	defer source.Unlock()
	return ID(ulid.MustNew(ulid.Timestamp(t), source.entropy).String())
}

// Parse accepts any letter case and surrounding space and returns the
// canonical form.
func Parse(s string) (ID, error) {
	u, err := ulid.ParseStrict(strings.TrimSpace(s))
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return ID(u.String()), nil
}

// MustParse is for literals in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) IsZero() bool   { return id == Zero }
func (id ID) String() string { return string(id) }

// Time is the mint time at millisecond precision, or the zero time for an
// invalid ID.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(string(id))
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time()).UTC()
}

// Compare orders IDs by mint time. Suitable for slices.SortFunc.
func Compare(a, b ID) int {
	return strings.Compare(string(a), string(b))
}
