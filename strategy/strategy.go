// Package strategy derives a player's action from the game context the dealer
// supplies. Decide is pure: it never mutates the record it is given.
package strategy

import (
	"fmt"

	"github.com/wfunc/teenpatti-player/models"
)

const (
	// OpeningFraction is the share of the balance wagered when no bet is on the table.
	OpeningFraction = 0.1
	// MaxBalanceRisk is the largest fraction of the balance the player will call.
	MaxBalanceRisk = 0.5
)

// Decision 决策结果
type Decision struct {
	Action      models.Action `json:"action"`
	Amount      int64         `json:"amount"`
	PotOdds     float64       `json:"-"`
	BalanceRisk float64       `json:"-"`
	Reason      string        `json:"-"`
}

func Fold(reason string) Decision {
	return Decision{Action: models.ActionFold, Amount: 0, Reason: reason}
}

// Decide applies the canonical heuristic:
//
//  1. inactive or broke players fold;
//  2. an unopened round is opened with max(1, floor(balance*0.1));
//  3. otherwise the player folds when calling would risk more than half the
//     balance, and calls the current bet in every other case.
//
// Pot odds are computed and reported but do not change the outcome; the player
// never raises.
func Decide(player models.PlayerRecord, potSize, currentBet int64) Decision {
	if !player.IsActive {
		return Fold("inactive")
	}
	if player.Balance <= 0 {
		return Fold("no balance")
	}

	if currentBet == 0 {
		amount := int64(float64(player.Balance) * OpeningFraction)
		if amount < 1 {
			amount = 1
		}
		return Decision{
			Action: models.ActionBet,
			Amount: amount,
			Reason: "open",
		}
	}

	potOdds := float64(currentBet) / float64(max(potSize, 1))
	balanceRisk := float64(currentBet) / float64(player.Balance)

	if balanceRisk > MaxBalanceRisk {
		d := Fold(fmt.Sprintf("balance risk %.2f", balanceRisk))
		d.PotOdds = potOdds
		d.BalanceRisk = balanceRisk
		return d
	}

	return Decision{
		Action:      models.ActionBet,
		Amount:      currentBet,
		PotOdds:     potOdds,
		BalanceRisk: balanceRisk,
		Reason:      fmt.Sprintf("call, pot odds %.2f", potOdds),
	}
}
