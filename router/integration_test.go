// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/pollvault/models"
	"github.com/danielhkuo/pollvault/testutil"
)

// TestFundedPollEndToEnd walks the full life of a self-funded poll
// through the HTTP surface: create, vote out the reward budget, close,
// withdraw the remainder.
func TestFundedPollEndToEnd(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	mux := NewRouter(eng)

	creator := map[string]string{"X-Principal": "alice-creator"}

	send := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.MakeRequest(method, path, body, headers)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	// Create: 100 gross, 10% fee, 10 per response -> 9 rewarded votes.
	w := send("POST", "/polls", testutil.FundedPollRequest(100, 10, models.RewardModeImmediate), creator)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created models.CreatePollResponse
	testutil.DecodeJSON(t, w, &created)
	base := "/polls/" + strconv.FormatInt(created.PollID, 10)

	// Nine rewarded votes, then a tenth that is accepted without reward.
	for i := 0; i < 10; i++ {
		principal := fmt.Sprintf("voter-%02d", i)
		w = send("POST", base+"/vote_v2", models.VoteRequest{OptionID: i % 2},
			map[string]string{"X-Principal": principal})
		if w.Code != http.StatusOK {
			t.Fatalf("vote %d: expected 200, got %d: %s", i, w.Code, w.Body.String())
		}
		var vr models.VoteV2Response
		testutil.DecodeJSON(t, w, &vr)
		if vr.Status != "ok" {
			t.Fatalf("vote %d rejected: %s", i, vr.Reason)
		}
		want := models.RewardPaid
		if i == 9 {
			want = models.RewardSkipped
		}
		if vr.Receipt.Reward.Status != want {
			t.Errorf("vote %d: expected reward %s, got %s", i, want, vr.Receipt.Reward.Status)
		}
	}

	// Poll state reflects all ten votes with an exhausted fund.
	w = send("GET", base, nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", w.Code)
	}
	var poll models.Poll
	testutil.DecodeJSON(t, w, &poll)
	if poll.TotalVotes != 10 {
		t.Errorf("expected 10 votes, got %d", poll.TotalVotes)
	}
	if poll.Funding.RemainingFund.String() != "0" {
		t.Errorf("expected empty fund, got %s", poll.Funding.RemainingFund)
	}
	if poll.Funding.CurrentResponses != 9 {
		t.Errorf("expected 9 rewarded responses, got %d", poll.Funding.CurrentResponses)
	}

	// Close and withdraw; nothing is left to pay out.
	w = send("POST", base+"/close", nil, creator)
	if w.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d", w.Code)
	}
	w = send("POST", base+"/withdraw", nil, creator)
	if w.Code != http.StatusOK {
		t.Fatalf("withdraw: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var withdrawal models.WithdrawResponse
	testutil.DecodeJSON(t, w, &withdrawal)
	if !withdrawal.WithdrawnAmount.IsZero() {
		t.Errorf("expected zero withdrawal, got %s", withdrawal.WithdrawnAmount)
	}

	// Ledger totals: 10 fee + 9 rewards of 10 left the platform account.
	if got := lg.PushedTo("treasury-account").String(); got != "10" {
		t.Errorf("expected 10 to treasury, got %s", got)
	}
	for i := 0; i < 9; i++ {
		principal := fmt.Sprintf("voter-%02d", i)
		if got := lg.PushedTo(principal).String(); got != "10" {
			t.Errorf("expected 10 paid to %s, got %s", principal, got)
		}
	}
}

// TestDeferredPollEndToEnd walks a deferred-reward poll through the
// claims phase and a final donation of the remainder.
func TestDeferredPollEndToEnd(t *testing.T) {
	eng, _, lg := testutil.SetupTestEngine(t)
	mux := NewRouter(eng)

	creator := map[string]string{"X-Principal": "alice-creator"}
	voter := map[string]string{"X-Principal": "bob-voter"}

	send := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		t.Helper()
		req := testutil.MakeRequest(method, path, body, headers)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	w := send("POST", "/polls", testutil.FundedPollRequest(100, 10, models.RewardModeDeferred), creator)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	var created models.CreatePollResponse
	testutil.DecodeJSON(t, w, &created)
	base := "/polls/" + strconv.FormatInt(created.PollID, 10)

	if w = send("POST", base+"/vote", models.VoteRequest{OptionID: 0}, voter); w.Code != http.StatusOK {
		t.Fatalf("vote: expected 200, got %d", w.Code)
	}

	if w = send("POST", base+"/start-claims", nil, creator); w.Code != http.StatusOK {
		t.Fatalf("start-claims: expected 200, got %d", w.Code)
	}

	w = send("POST", base+"/claims", nil, voter)
	if w.Code != http.StatusOK {
		t.Fatalf("claim: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var claim models.ClaimRewardResponse
	testutil.DecodeJSON(t, w, &claim)
	if claim.Amount.String() != "10" {
		t.Errorf("expected claim of 10, got %s", claim.Amount)
	}

	if w = send("POST", base+"/end-claims", nil, creator); w.Code != http.StatusOK {
		t.Fatalf("end-claims: expected 200, got %d", w.Code)
	}

	w = send("POST", base+"/donate", nil, creator)
	if w.Code != http.StatusOK {
		t.Fatalf("donate: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var donation models.DonateResponse
	testutil.DecodeJSON(t, w, &donation)
	if donation.DonatedAmount.String() != "80" {
		t.Errorf("expected donation of 80, got %s", donation.DonatedAmount)
	}

	// 10 fee at lock + 80 donated.
	if got := lg.PushedTo("treasury-account").String(); got != "90" {
		t.Errorf("expected 90 total to treasury, got %s", got)
	}
	if got := lg.PushedTo("bob-voter").String(); got != "10" {
		t.Errorf("expected 10 to the voter, got %s", got)
	}
}
