// Package verify implements the premium verifier (spec.md §4.5): two
// independent HTTP probes against Mojang's account APIs, rate-limited
// and cached with a TTL on each Player.
package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go.minekube.com/slpwatch/internal/model"
)

// VerificationTTL is the 30-day re-verification bound, written as the
// literal 216000 * 12 seconds (2,592,000 s = exactly 30 days).
const VerificationTTL = 216000 * 12 * time.Second

const (
	sessionProfileURLFmt = "https://sessionserver.mojang.com/session/minecraft/profile/%s"
	nameProfileURLFmt    = "https://api.mojang.com/users/profiles/minecraft/%s"
)

// probeTimeout bounds each individual HTTP probe; spec.md §5 notes the
// HTTP library's default has no explicit deadline and recommends
// imposing ~5s to match the status-query timeout.
const probeTimeout = 5 * time.Second

// Verifier performs rate-limited Mojang probes. It is safe for
// concurrent use by multiple pipeline workers; every worker handed the
// same Verifier shares its one rate limiter.
type Verifier struct {
	client  *fasthttp.Client
	limiter *rate.Limiter
	ttl     time.Duration
	now     func() int64
}

// New constructs a Verifier pacing outbound probes to ratePerSecond
// requests/second (each verification issues up to two probes).
func New(ratePerSecond float64) *Verifier {
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	return &Verifier{
		client:  &fasthttp.Client{Name: "slpwatch-verifier"},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		ttl:     VerificationTTL,
		now:     func() int64 { return time.Now().Unix() },
	}
}

// VerifyIfStale probes p's premium status if its last verification is
// older than the TTL. It is fire-and-forget from the worker's
// perspective: any error here is swallowed and never invalidates a
// successful status poll (spec.md §4.5 invariant).
func (v *Verifier) VerifyIfStale(ctx context.Context, p *model.Player) {
	now := v.now()
	if !p.NeedsVerification(now, v.ttl) {
		return
	}

	uuidOK, uuidErr := v.probeUUID(ctx, p.UUID)
	nameOK, nameErr := v.probeName(ctx, p.Name)

	if uuidErr != nil || nameErr != nil {
		// Either probe failed: leave previous values intact, don't
		// advance last_verified, so the TTL retries next cycle.
		zap.L().Debug("premium verification failed, will retry next cycle",
			zap.String("player", p.Name), zap.NamedError("uuidErr", uuidErr), zap.NamedError("nameErr", nameErr))
		return
	}

	p.RecordVerification(nameOK, uuidOK, now)
}

// probeUUID reports whether uuid resolves to a premium account via
// GET sessionserver.mojang.com/session/minecraft/profile/{uuid}: 200
// means premium.
func (v *Verifier) probeUUID(ctx context.Context, uuid string) (model.TriState, error) {
	if uuid == "" {
		return model.Unknown, nil
	}
	return v.probe(ctx, fmt.Sprintf(sessionProfileURLFmt, uuid))
}

// probeName reports whether name currently resolves to a premium
// account via GET api.mojang.com/users/profiles/minecraft/{name}: 200
// means premium.
func (v *Verifier) probeName(ctx context.Context, name string) (model.TriState, error) {
	if name == "" {
		return model.Unknown, nil
	}
	return v.probe(ctx, fmt.Sprintf(nameProfileURLFmt, name))
}

func (v *Verifier) probe(ctx context.Context, url string) (model.TriState, error) {
	if err := v.limiter.Wait(ctx); err != nil {
		return model.Unknown, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := v.client.DoTimeout(req, resp, probeTimeout); err != nil {
		return model.Unknown, err
	}

	switch resp.StatusCode() {
	case fasthttp.StatusOK:
		return model.True, nil
	case fasthttp.StatusNoContent, fasthttp.StatusNotFound:
		return model.False, nil
	default:
		return model.Unknown, fmt.Errorf("verify: unexpected status %d from %s", resp.StatusCode(), url)
	}
}
