package models

type SpiritualLevel string

const (
	LevelPeregrino SpiritualLevel = "Peregrino"
	LevelDevoto    SpiritualLevel = "Devoto"
	LevelServo     SpiritualLevel = "Servo"
	LevelApostolo  SpiritualLevel = "Apóstolo"
)

// LevelTier is one row of the grace threshold table. The upper bound of a tier
// is the next tier's Min - 1; the last tier is unbounded.
type LevelTier struct {
	Level SpiritualLevel `json:"level"`
	Min   int            `json:"min"`
}

// LevelTiers is ordered by ascending Min.
var LevelTiers = []LevelTier{
	{Level: LevelPeregrino, Min: 0},
	{Level: LevelDevoto, Min: 51},
	{Level: LevelServo, Min: 201},
	{Level: LevelApostolo, Min: 501},
}

// LevelFor returns the highest tier whose minimum is <= graces.
func LevelFor(graces int) SpiritualLevel {
	level := LevelTiers[0].Level
	for _, tier := range LevelTiers {
		if graces >= tier.Min {
			level = tier.Level
		}
	}
	return level
}
