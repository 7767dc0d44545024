package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wfunc/teenpatti-player/models"
)

func player(balance int64, active bool) models.PlayerRecord {
	return models.PlayerRecord{
		ID:       "p",
		Balance:  balance,
		Hand:     []string{"AS", "KD", "2C"},
		IsActive: active,
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name       string
		player     models.PlayerRecord
		pot        int64
		currentBet int64
		wantAction models.Action
		wantAmount int64
	}{
		{"inactive folds", player(100, false), 50, 0, models.ActionFold, 0},
		{"zero balance folds", player(0, true), 50, 10, models.ActionFold, 0},
		{"negative balance folds", player(-5, true), 0, 0, models.ActionFold, 0},
		{"opening bet is ten percent", player(100, true), 0, 0, models.ActionBet, 10},
		{"opening bet floors", player(99, true), 0, 0, models.ActionBet, 9},
		{"opening bet at least one", player(5, true), 0, 0, models.ActionBet, 1},
		{"high risk folds", player(50, true), 100, 40, models.ActionFold, 0},
		{"exactly half calls", player(80, true), 100, 40, models.ActionBet, 40},
		{"low risk calls", player(100, true), 10, 20, models.ActionBet, 20},
		{"empty pot still calls", player(100, true), 0, 5, models.ActionBet, 5},
		{"huge pot odds never raise", player(1000, true), 1, 100, models.ActionBet, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(tt.player, tt.pot, tt.currentBet)
			assert.Equal(t, tt.wantAction, d.Action)
			assert.Equal(t, tt.wantAmount, d.Amount)
			assert.GreaterOrEqual(t, d.Amount, int64(0))
		})
	}
}

func TestDecide_ReportsRatios(t *testing.T) {
	d := Decide(player(100, true), 0, 25)
	assert.InDelta(t, 25.0, d.PotOdds, 1e-9)
	assert.InDelta(t, 0.25, d.BalanceRisk, 1e-9)

	d = Decide(player(50, true), 200, 40)
	assert.InDelta(t, 0.2, d.PotOdds, 1e-9)
	assert.InDelta(t, 0.8, d.BalanceRisk, 1e-9)
}

func TestDecide_DoesNotMutateInput(t *testing.T) {
	p := player(100, true)
	hand := append([]string(nil), p.Hand...)

	Decide(p, 10, 0)
	Decide(p, 10, 30)
	Decide(p, 10, 90)

	assert.Equal(t, int64(100), p.Balance)
	assert.Equal(t, hand, p.Hand)
	assert.True(t, p.IsActive)
	assert.Zero(t, p.CurrentBet)
}

func TestDecide_CallNeverExceedsBalance(t *testing.T) {
	for balance := int64(1); balance <= 200; balance++ {
		for bet := int64(0); bet <= 250; bet += 7 {
			d := Decide(player(balance, true), 100, bet)
			if d.Action == models.ActionBet {
				assert.LessOrEqual(t, d.Amount, balance, "balance=%d bet=%d", balance, bet)
			}
		}
	}
}
