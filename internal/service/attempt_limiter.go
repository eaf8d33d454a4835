package service

import "sync"

// pairLock is one (user, quiz) entry. refs counts holders and waiters so
// the registry entry can be dropped once the last one releases.
type pairLock struct {
	mu   sync.Mutex
	refs int
}

// AttemptLimiter serializes attempt submissions per (user, quiz) pair so
// the count-then-create check inside the transaction cannot race with a
// concurrent submission of the same pair. Different pairs never block
// each other, and an entry lives only while someone holds or waits on it.
type AttemptLimiter struct {
	mu    sync.Mutex
	locks map[string]*pairLock
}

func NewAttemptLimiter() *AttemptLimiter {
	return &AttemptLimiter{
		locks: make(map[string]*pairLock),
	}
}

// Do runs fn while holding the lock for the (user, quiz) pair.
func (l *AttemptLimiter) Do(userID, quizID string, fn func() error) error {
	key := userID + "\x00" + quizID

	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &pairLock{}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}()

	lock.mu.Lock()
	defer lock.mu.Unlock()
	return fn()
}
