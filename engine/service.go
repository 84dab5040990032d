package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"econledger/core"
	"econledger/leaderboard"
)

// EconomyService wires a ledger, leaderboard, and notification bus into the
// transaction engine. Every mutation follows the same sequence: validate,
// lock the account key, read the old balance, announce a cancellable submit
// notification, commit, release the lock, refresh the leaderboard, announce
// success. A veto or failure at any step leaves ledger and board untouched.
type EconomyService struct {
	ledger  Ledger
	board   leaderboard.Board
	bus     *Bus
	locks   *keyedLock
	gate    *boardGate
	gateway *Gateway
}

func NewEconomyService(ledger Ledger, board leaderboard.Board, bus *Bus, resolveTimeout time.Duration) *EconomyService {
	if ledger == nil || board == nil || bus == nil {
		panic("NewEconomyService requires non-nil ledger, board, and bus")
	}
	return &EconomyService{
		ledger:  ledger,
		board:   board,
		bus:     bus,
		locks:   newKeyedLock(),
		gate:    newBoardGate(),
		gateway: NewGateway(ledger, resolveTimeout),
	}
}

// OnSubmit convenience method.
func (s *EconomyService) OnSubmit(fn SubmitObserver) func() { return s.bus.OnSubmit(fn) }

// OnSuccess convenience method.
func (s *EconomyService) OnSuccess(fn SuccessObserver) func() { return s.bus.OnSuccess(fn) }

// Seed loads every recorded account into the leaderboard. Call once at
// startup before serving queries.
func (s *EconomyService) Seed(ctx context.Context) error {
	balances, err := s.ledger.All(ctx)
	if err != nil {
		return fmt.Errorf("seed leaderboard: %w", err)
	}
	for name, balance := range balances {
		s.board.Update(name, balance)
	}
	return nil
}

// Balance returns the current balance, or core.ErrNotFound for a player with
// no recorded account.
func (s *EconomyService) Balance(ctx context.Context, name core.Name) (int64, error) {
	normalized, err := core.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	return s.ledger.Get(ctx, normalized)
}

// SetBalance unconditionally overwrites the balance, creating the account if
// needed. Fails with core.ErrInvalidAmount for negative amounts and
// core.ErrCancelled when a submit observer vetoes.
func (s *EconomyService) SetBalance(ctx context.Context, name core.Name, amount int64) (int64, error) {
	normalized, err := core.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	if amount < 0 {
		return 0, fmt.Errorf("%w: balance cannot be negative", core.ErrInvalidAmount)
	}
	return s.mutate(ctx, normalized, core.TxSet, func(old int64, found bool) (int64, error) {
		return amount, nil
	})
}

// AddBalance credits amount (> 0), creating the account if needed.
func (s *EconomyService) AddBalance(ctx context.Context, name core.Name, amount int64) (int64, error) {
	normalized, err := core.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", core.ErrInvalidAmount)
	}
	return s.mutate(ctx, normalized, core.TxAdd, func(old int64, found bool) (int64, error) {
		next, err := core.AddSafe(old, amount)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", core.ErrInvalidAmount, err)
		}
		return next, nil
	})
}

// ReduceBalance debits amount (> 0). Fails with core.ErrPlayerNotFound for
// unknown accounts and core.ErrInsufficientFunds when the balance is short;
// the committed balance is never negative.
func (s *EconomyService) ReduceBalance(ctx context.Context, name core.Name, amount int64) (int64, error) {
	normalized, err := core.NormalizeName(name)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", core.ErrInvalidAmount)
	}
	return s.mutate(ctx, normalized, core.TxReduce, func(old int64, found bool) (int64, error) {
		if !found {
			return 0, core.ErrPlayerNotFound
		}
		if old < amount {
			return 0, fmt.Errorf("%w: balance %d < %d", core.ErrInsufficientFunds, old, amount)
		}
		return old - amount, nil
	})
}

// mutate runs one single-account mutation under the account's key lock.
// compute receives the current balance (0, false when the account does not
// exist yet) and returns the balance to commit.
func (s *EconomyService) mutate(ctx context.Context, name core.Name, typ core.TxType, compute func(old int64, found bool) (int64, error)) (int64, error) {
	s.locks.lock(name)
	committed, tx, seq, err := func() (bool, core.Transaction, uint64, error) {
		defer s.locks.unlock(name)
		old, found, err := s.read(ctx, name)
		if err != nil {
			return false, core.Transaction{}, 0, err
		}
		next, err := compute(old, found)
		if err != nil {
			return false, core.Transaction{}, 0, err
		}
		tx := core.NewTransaction(typ, name, old, next)
		if err := s.bus.Submit(ctx, tx); err != nil {
			return false, core.Transaction{}, 0, wrapCancelled(err)
		}
		if err := s.ledger.Set(ctx, name, next); err != nil {
			return false, core.Transaction{}, 0, err
		}
		return true, tx, s.gate.next(name), nil
	}()
	if !committed {
		return 0, err
	}
	// Board update and success notification happen after the account lock is
	// released; the gate discards this refresh if a later commit beat it here.
	s.gate.apply(s.board, name, tx.New, seq)
	s.bus.Success(ctx, tx)
	return tx.New, nil
}

// Pay moves amount from one account to another as a single logical
// transaction: both submit notifications must pass before either account is
// touched, and a failed second commit rolls back the first. Returns the
// payer's resulting balance.
func (s *EconomyService) Pay(ctx context.Context, from, to core.Name, amount int64) (int64, error) {
	src, err := core.NormalizeName(from)
	if err != nil {
		return 0, err
	}
	dst, err := core.NormalizeName(to)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", core.ErrInvalidAmount)
	}
	if src == dst {
		return 0, fmt.Errorf("%w: cannot pay yourself", core.ErrInvalidAmount)
	}

	s.locks.lockPair(src, dst)
	committed, txFrom, txTo, seqFrom, seqTo, err := func() (bool, core.Transaction, core.Transaction, uint64, uint64, error) {
		defer s.locks.unlockPair(src, dst)
		var zero core.Transaction

		oldFrom, found, err := s.read(ctx, src)
		if err != nil {
			return false, zero, zero, 0, 0, err
		}
		if !found {
			return false, zero, zero, 0, 0, core.ErrPlayerNotFound
		}
		if oldFrom < amount {
			return false, zero, zero, 0, 0, fmt.Errorf("%w: balance %d < %d", core.ErrInsufficientFunds, oldFrom, amount)
		}
		oldTo, _, err := s.read(ctx, dst)
		if err != nil {
			return false, zero, zero, 0, 0, err
		}
		newTo, err := core.AddSafe(oldTo, amount)
		if err != nil {
			return false, zero, zero, 0, 0, fmt.Errorf("%w: %v", core.ErrInvalidAmount, err)
		}

		txFrom := core.NewPayLeg(src, dst, oldFrom, oldFrom-amount)
		txTo := core.NewPayLeg(dst, src, oldTo, newTo)

		if err := s.bus.Submit(ctx, txFrom); err != nil {
			return false, zero, zero, 0, 0, wrapCancelled(err)
		}
		if err := s.bus.Submit(ctx, txTo); err != nil {
			return false, zero, zero, 0, 0, wrapCancelled(err)
		}

		if err := s.ledger.Set(ctx, src, txFrom.New); err != nil {
			return false, zero, zero, 0, 0, err
		}
		if err := s.ledger.Set(ctx, dst, txTo.New); err != nil {
			// roll the reduce leg back so no partial payment survives
			if rbErr := s.ledger.Set(ctx, src, oldFrom); rbErr != nil {
				return false, zero, zero, 0, 0, errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
			return false, zero, zero, 0, 0, err
		}
		return true, txFrom, txTo, s.gate.next(src), s.gate.next(dst), nil
	}()
	if !committed {
		return 0, err
	}
	s.gate.apply(s.board, src, txFrom.New, seqFrom)
	s.gate.apply(s.board, dst, txTo.New, seqTo)
	s.bus.Success(ctx, txFrom)
	s.bus.Success(ctx, txTo)
	return txFrom.New, nil
}

// Top returns the ranked page [offset, offset+limit).
func (s *EconomyService) Top(limit, offset int) []leaderboard.Entry {
	return s.board.Top(limit, offset)
}

// Rank returns the 1-based leaderboard position of name.
func (s *EconomyService) Rank(name core.Name) (int, bool) {
	normalized, err := core.NormalizeName(name)
	if err != nil {
		return 0, false
	}
	return s.board.Rank(normalized)
}

// ResolveBalance resolves a balance without blocking the caller; see Gateway.
func (s *EconomyService) ResolveBalance(ctx context.Context, name core.Name) <-chan Resolution {
	return s.gateway.Resolve(ctx, name)
}

func (s *EconomyService) Close() { s.bus.Close() }

func (s *EconomyService) read(ctx context.Context, name core.Name) (int64, bool, error) {
	balance, err := s.ledger.Get(ctx, name)
	if errors.Is(err, core.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return balance, true, nil
}

func wrapCancelled(err error) error {
	if errors.Is(err, core.ErrCancelled) {
		return err
	}
	return fmt.Errorf("%w: %v", core.ErrCancelled, err)
}
