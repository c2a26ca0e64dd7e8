// internal/sequence/sequence.go

// Package sequence persists the stimulus/response pairs the simulator
// kernel module consults when it answers a command.
package sequence

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/spisim-control/internal/hexcodec"
)

// MaxFieldLen is the longest hex string the kernel module stores per field.
const MaxFieldLen = 255

// Sequence is one scripted exchange: when the device receives Received
// it answers with Response. Both are hexcodec strings.
type Sequence struct {
	Received string `json:"received"`
	Response string `json:"response"`
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("sequence: invalid")

// Store persists a full sequence list.
type Store interface {
	Persist(seqs []Sequence) error
}

// Validate checks every entry. It does not mutate the list.
func Validate(seqs []Sequence) error {
	var errs []string

	for i, s := range seqs {
		if strings.TrimSpace(s.Received) == "" {
			errs = append(errs, fmt.Sprintf("sequence %d: received is empty", i))
		} else if err := checkField(s.Received); err != nil {
			errs = append(errs, fmt.Sprintf("sequence %d: received: %v", i, err))
		}

		if err := checkField(s.Response); err != nil {
			errs = append(errs, fmt.Sprintf("sequence %d: response: %v", i, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, " | "))
	}
	return nil
}

func checkField(v string) error {
	if len(v) > MaxFieldLen {
		return fmt.Errorf("longer than %d characters", MaxFieldLen)
	}
	if _, err := hexcodec.Decode(v); err != nil {
		return err
	}
	return nil
}
