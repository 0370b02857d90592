package fuzztests

import "testing"

const maxSeedBytes = 64 << 10

var languageSeeds = []string{
	"",
	"class Pawn extends Actor;\n",
	"class Pawn extends Actor;\n\nvar int Health;\nvar() config float Speed;\nconst MaxInventory = 16;\n",
	"class Weapon extends Inventory;\n\nenum EFireMode\n{\n\tFM_Single,\n\tFM_Burst,\n\tFM_Auto\n};\n",
	"class Actor extends Object;\n\nstruct Vector\n{\n\tvar float X, Y, Z;\n};\n",
	"class Pawn extends Actor;\n\nfunction TakeDamage(int Amount, optional Pawn Instigator)\n{\n\tHealth -= Amount;\n\tif (Health <= 0)\n\t\tDied();\n}\n",
	"class Gun extends Weapon;\n\nstate Firing\n{\nBegin:\n\tSleep(0.1);\n\tgoto 'Begin';\n}\n",
	"class Repl extends Actor;\n\nreplication\n{\n\treliable if (Role == ROLE_Authority)\n\t\tHealth, Armor;\n}\n",
	"class Def extends Actor;\n\ndefaultproperties\n{\n\tHealth=100\n\tDrawScale=1.5\n\tBegin Object Class=SpriteComponent Name=Sprite\n\t\tHiddenGame=true\n\tEnd Object\n}\n",
	"class Op extends Object;\n\nstatic final operator(16) float *(float A, Vector B)\n{\n\treturn A * B.X;\n}\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range languageSeeds {
		f.Add(clampSeed([]byte(seed)))
	}
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
