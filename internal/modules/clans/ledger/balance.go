package ledger

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed balance.yaml
var balanceYAML []byte

type StageCheckpoint struct {
	Stage int `yaml:"stage"`
	Valor int `yaml:"valor"`
	Gold  int `yaml:"gold"`
}

// Balance holds the game constants the ledgers are computed from.
type Balance struct {
	Stages                []StageCheckpoint `yaml:"stages"`
	StageCloseThreshold   int               `yaml:"stage_close_threshold"`
	ZUValor               int               `yaml:"zu_valor"`
	RhythmValors          []int             `yaml:"rhythm_valors"`
	FinishedDancerCircles int               `yaml:"finished_dancer_circles"`
}

var (
	balanceOnce sync.Once
	balance     *Balance
)

// DefaultBalance returns the embedded table. It panics on a malformed
// embed, which can only happen at build time.
func DefaultBalance() *Balance {
	balanceOnce.Do(func() {
		b, err := ParseBalance(balanceYAML)
		if err != nil {
			panic(err)
		}
		balance = b
	})
	return balance
}

func ParseBalance(raw []byte) (*Balance, error) {
	var b Balance
	if err := yaml.Unmarshal(raw, &b); err != nil {
		return nil, fmt.Errorf("parse balance: %w", err)
	}
	if len(b.Stages) == 0 {
		return nil, fmt.Errorf("parse balance: no stages")
	}
	for i, s := range b.Stages {
		if s.Stage != i+1 {
			return nil, fmt.Errorf("parse balance: stage %d out of order at %d", s.Stage, i)
		}
	}
	if b.ZUValor <= 0 {
		return nil, fmt.Errorf("parse balance: zu_valor must be positive")
	}
	return &b, nil
}

func (b *Balance) MaxStage() int { return len(b.Stages) }

// StageFor returns the stage whose checkpoint is exactly (valor, gold).
func (b *Balance) StageFor(valor, gold int) (int, bool) {
	for _, s := range b.Stages {
		if s.Valor == valor && s.Gold == gold {
			return s.Stage, true
		}
	}
	return 0, false
}

func (b *Balance) Checkpoint(stage int) (StageCheckpoint, bool) {
	if stage < 1 || stage > len(b.Stages) {
		return StageCheckpoint{}, false
	}
	return b.Stages[stage-1], true
}

func (b *Balance) isRhythm(valor int) bool {
	for _, v := range b.RhythmValors {
		if v == valor {
			return true
		}
	}
	return false
}
