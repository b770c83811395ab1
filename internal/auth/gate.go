// Package auth implements the PIN gate that guards every data operation.
//
// A Gate is a two-state machine, Locked and Unlocked. It is created per
// session and carried to services through the context.
package auth

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/and161185/card-keeper/internal/crypto"
	"github.com/and161185/card-keeper/internal/repository"
)

// State of a Gate.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

const (
	// DefaultPIN is accepted until the first successful reset.
	DefaultPIN = "2208"
	// SecurityQuestion is shown to the user before a reset.
	SecurityQuestion = "what use of app"

	securityAnswer = "LUDO"
)

var pinRe = regexp.MustCompile(`^\d{4}$`)

// ValidPIN reports whether pin is exactly four digits. The gate itself does
// not enforce it; callers check before ResetPIN.
func ValidPIN(pin string) bool { return pinRe.MatchString(pin) }

// Gate guards a single session.
type Gate struct {
	secrets repository.SecretRepository
	log     *zap.Logger

	mu    sync.Mutex
	state State
}

// NewGate returns a locked gate. A nil logger is replaced by a no-op one.
func NewGate(secrets repository.SecretRepository, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{secrets: secrets, log: log}
}

// Login unlocks the gate when pin matches the stored PIN, or DefaultPIN when
// none was ever set. A wrong PIN is (false, nil) and leaves the state alone.
func (g *Gate) Login(ctx context.Context, pin string) (bool, error) {
	rec, err := g.secrets.PIN(ctx)
	if err != nil {
		return false, fmt.Errorf("login: %w", err)
	}
	var ok bool
	if rec.Empty() {
		ok = crypto.EqualPIN(pin, DefaultPIN)
	} else {
		ok = crypto.VerifyPIN(pin, rec)
	}
	if !ok {
		g.log.Info("login rejected")
		return false, nil
	}

	g.mu.Lock()
	g.state = Unlocked
	g.mu.Unlock()
	g.log.Info("gate unlocked")
	return true, nil
}

// Logout locks the gate.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.state = Locked
	g.mu.Unlock()
	g.log.Info("gate locked")
}

// ResetPIN replaces the PIN when answer matches the security answer,
// ignoring case but not surrounding spaces. It rotates the session key so earlier tokens stop working.
// The gate state does not change.
func (g *Gate) ResetPIN(ctx context.Context, answer, newPIN string) (bool, error) {
	if !strings.EqualFold(answer, securityAnswer) {
		g.log.Info("pin reset rejected")
		return false, nil
	}
	rec, err := crypto.NewPINRecord(newPIN)
	if err != nil {
		return false, fmt.Errorf("reset pin: %w", err)
	}
	if _, err := g.secrets.ReplacePIN(ctx, rec); err != nil {
		return false, fmt.Errorf("reset pin: %w", err)
	}
	g.log.Info("pin reset")
	return true, nil
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Unlocked reports whether data operations are allowed.
func (g *Gate) Unlocked() bool { return g.State() == Unlocked }
