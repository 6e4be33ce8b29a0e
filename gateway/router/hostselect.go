package router

import (
	"crypto/rand"
	"math/big"

	"github.com/lepista-tech/mycelium/identity/models"
)

// selectHost implements spec.md §4.2's host-selection rule: pick uniformly
// among Healthy hosts, ties broken by lowest consecutive-failure count; if
// none are Healthy, fall back to any Unknown host (never-yet-probed) with
// a logged warning; if neither exists, the caller returns 503.
//
// selectHost returns the chosen host index and whether the pick fell back
// to an Unknown host (the caller logs a warning in that case).
func selectHost(svc *models.Service) (index int, fellBackToUnknown bool, ok bool) {
	if healthy := svc.HealthyHosts(); len(healthy) > 0 {
		idx, err := pickLeastFailures(svc, healthy)
		if err != nil {
			return healthy[0], false, true
		}
		return idx, false, true
	}
	if unknown := svc.UnknownHosts(); len(unknown) > 0 {
		idx, err := randomIndex(unknown)
		if err != nil {
			return unknown[0], true, true
		}
		return idx, true, true
	}
	return 0, false, false
}

// pickLeastFailures narrows candidates to those tied for the lowest
// ConsecutiveFailures count, then picks uniformly among the tie.
func pickLeastFailures(svc *models.Service, candidates []int) (int, error) {
	min := -1
	for _, i := range candidates {
		f := svc.Hosts[i].Health.ConsecutiveFailures
		if min == -1 || f < min {
			min = f
		}
	}
	var tied []int
	for _, i := range candidates {
		if svc.Hosts[i].Health.ConsecutiveFailures == min {
			tied = append(tied, i)
		}
	}
	return randomIndex(tied)
}

// randomIndex picks uniformly among candidates using a CSPRNG rather than
// math/rand, since host selection runs on every forwarded request and the
// corpus's security-sensitive randomness (connection-string secrets, TOTP)
// already standardizes on crypto/rand.
func randomIndex(candidates []int) (int, error) {
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(candidates))))
	if err != nil {
		return 0, err
	}
	return candidates[n.Int64()], nil
}
