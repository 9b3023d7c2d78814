// Copyright (c) Liam Stanley <me@liamstanley.io>. All rights reserved. Use
// of this source code is governed by the MIT license that can be found in
// the LICENSE file.

package ircd

import (
	"fmt"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// Resolver performs a reverse-DNS (PTR) lookup for every new connection
// without blocking the single loop goroutine: lookups run on their own
// goroutines and post results back through a buffered channel the loop
// drains each iteration, replacing the user's host on success. No forward
// confirmation is done, and registration does not wait for the result.
type Resolver struct {
	client  *dns.Client
	servers []string

	mu      sync.Mutex
	results chan resolveResult
}

type resolveResult struct {
	fd   int
	host string
	err  error
}

// NewResolver returns a Resolver that queries the given nameserver
// addresses (host:port), falling back to "127.0.0.1:53" if none given.
func NewResolver(servers []string) *Resolver {
	if len(servers) == 0 {
		servers = []string{"127.0.0.1:53"}
	}
	return &Resolver{
		client:  &dns.Client{Timeout: 5 * time.Second},
		servers: servers,
		results: make(chan resolveResult, 256),
	}
}

// ResolveAsync kicks off a reverse lookup for addr (an IP) bound to fd; the
// result later appears on Drain. Never blocks the caller.
func (r *Resolver) ResolveAsync(fd int, addr string) {
	go func() {
		host, err := r.reverse(addr)
		r.results <- resolveResult{fd: fd, host: host, err: err}
	}()
}

func (r *Resolver) reverse(addr string) (string, error) {
	rev, err := dns.ReverseAddr(addr)
	if err != nil {
		return "", err
	}

	msg := new(dns.Msg)
	msg.SetQuestion(rev, dns.TypePTR)

	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.Exchange(msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		for _, rr := range in.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				return trimTrailingDot(ptr.Ptr), nil
			}
		}
		return "", fmt.Errorf("no PTR record for %s", addr)
	}
	return "", lastErr
}

// Drain delivers every resolve result that has arrived since the last call,
// calling fn(fd, host, err) for each; called once per event loop iteration.
func (r *Resolver) Drain(fn func(fd int, host string, err error)) {
	for {
		select {
		case res := <-r.results:
			fn(res.fd, res.host, res.err)
		default:
			return
		}
	}
}

func trimTrailingDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}
