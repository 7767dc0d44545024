// deck/deck.go
package deck

import (
	rand "math/rand/v2"
	"time"
)

// HandSize 每位玩家的手牌数量
const HandSize = 3

var (
	Ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	Suits = []string{"H", "D", "C", "S"} // Hearts, Diamonds, Clubs, Spades
)

// Source 随机数来源，*rand.Rand 满足该接口
type Source interface {
	IntN(n int) int
}

const goldenRatio64 = 0x9e3779b97f4a7c15

// NewSource returns a deterministic source derived from seed.
func NewSource(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewRandomSource returns a source seeded from the wall clock.
func NewRandomSource() *rand.Rand {
	return NewSource(time.Now().UnixNano())
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// DrawCard 抽取一张牌，格式为 点数+花色，例如 "10H"、"AS"
// 每次抽取相互独立，不模拟有限牌堆，允许重复
func DrawCard(src Source) string {
	return Ranks[src.IntN(len(Ranks))] + Suits[src.IntN(len(Suits))]
}

// DrawHand 抽取一手牌
func DrawHand(src Source) []string {
	hand := make([]string, HandSize)
	for i := range hand {
		hand[i] = DrawCard(src)
	}
	return hand
}
