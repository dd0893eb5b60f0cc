package game

// CharacterAttributes are the gameplay stats of a playable character.
// Each attribute is in [1,8]; the formulas in constants.go translate them
// into physical quantities.
type CharacterAttributes struct {
	Speed   int `json:"speed"`
	Jump    int `json:"jump"`
	Power   int `json:"power"`
	Control int `json:"control"`
}

// roster maps character ids to their attributes. Cosmetics live client-side;
// only the stats matter to the simulation.
var roster = map[string]CharacterAttributes{
	"spike":   {Speed: 4, Jump: 5, Power: 7, Control: 2},
	"ace":     {Speed: 6, Jump: 4, Power: 4, Control: 4},
	"wall":    {Speed: 2, Jump: 7, Power: 5, Control: 4},
	"feather": {Speed: 7, Jump: 6, Power: 2, Control: 3},
	"coach":   {Speed: 4, Jump: 4, Power: 4, Control: 6},
}

var defaultAttributes = CharacterAttributes{Speed: 4, Jump: 4, Power: 4, Control: 4}

// AttributesFor resolves a character id, falling back to a balanced default
// for unknown or empty ids.
func AttributesFor(characterID string) CharacterAttributes {
	if attrs, ok := roster[characterID]; ok {
		return attrs
	}
	return defaultAttributes
}

func (a CharacterAttributes) MovementSpeed() float64 { return MovementSpeed(a.Speed) }
func (a CharacterAttributes) JumpForce() float64     { return JumpForce(a.Jump) }
func (a CharacterAttributes) HitPower() float64      { return HitPower(a.Power) }
func (a CharacterAttributes) ControlFactor() float64 { return ControlFactor(a.Control) }
