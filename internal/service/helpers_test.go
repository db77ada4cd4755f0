package service

import "sync"

type recorderStub struct {
	mu         sync.Mutex
	rejections []string
	logins     []string
	purged     int64
}

func (r *recorderStub) AuthRejected(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejections = append(r.rejections, reason)
}

func (r *recorderStub) LoginOutcome(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logins = append(r.logins, outcome)
}

func (r *recorderStub) SessionsPurged(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purged += n
}
