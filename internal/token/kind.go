package token

// Kind enumerates lexical token categories.
type Kind uint8

const (
	EOF Kind = iota
	Error

	Ident
	IntLit
	FloatLit
	StringLit
	NameLit // 'Identifier' quoted name literal

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Semicolon
	Comma
	Dot
	Colon
	Question

	// Operators.
	Assign
	Plus
	Minus
	Star
	Slash
	Percent
	Dollar // string concatenation
	At     // string concatenation with space
	PlusAssign
	MinusAssign
	StarAssign
	SlashAssign
	DollarAssign
	AtAssign
	EqEq
	BangEq
	TildeEq // approximate equality
	Lt
	LtEq
	Gt
	GtEq
	Shl
	Shr
	AndAnd
	OrOr
	CaretCaret // logical xor
	Amp
	Pipe
	Caret
	Bang
	Tilde
	PlusPlus
	MinusMinus

	// Declaration keywords.
	KwClass
	KwExtends
	KwWithin
	KwConst
	KwVar
	KwEnum
	KwStruct
	KwState
	KwFunction
	KwEvent
	KwOperator
	KwPreOperator
	KwPostOperator
	KwDelegate
	KwLocal
	KwReplication
	KwDefaultProperties
	KwIgnores

	// Specifier keywords.
	KwNative
	KwSimulated
	KwStatic
	KwFinal
	KwExec
	KwPrivate
	KwProtected
	KwPublic
	KwConfig
	KwLocalized
	KwTransient
	KwTravel
	KwOptional
	KwOut
	KwSkip
	KwCoerce
	KwReliable
	KwUnreliable
	KwDependsOn
	KwImplements

	// Statement keywords.
	KwIf
	KwElse
	KwWhile
	KwDo
	KwUntil
	KwFor
	KwForEach
	KwSwitch
	KwCase
	KwDefault
	KwReturn
	KwGoto
	KwAssert
	KwBreak
	KwContinue

	// Expression keywords.
	KwNew
	KwSelf
	KwSuper
	KwNone
	KwTrue
	KwFalse
	KwVect
	KwRot
	KwRng
	KwArrayCount
	KwNameOf

	// Primitive type keywords.
	KwInt
	KwFloat
	KwByte
	KwBool
	KwString
	KwName
	KwPointer
	KwButton
	KwArray
	KwMap

	// Defaultproperties object blocks.
	KwBegin
	KwObject
	KwEnd
)

var kindNames = map[Kind]string{
	EOF:       "EOF",
	Error:     "Error",
	Ident:     "Ident",
	IntLit:    "IntLit",
	FloatLit:  "FloatLit",
	StringLit: "StringLit",
	NameLit:   "NameLit",

	LParen:    "(",
	RParen:    ")",
	LBrace:    "{",
	RBrace:    "}",
	LBracket:  "[",
	RBracket:  "]",
	Semicolon: ";",
	Comma:     ",",
	Dot:       ".",
	Colon:     ":",
	Question:  "?",

	Assign:       "=",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Dollar:       "$",
	At:           "@",
	PlusAssign:   "+=",
	MinusAssign:  "-=",
	StarAssign:   "*=",
	SlashAssign:  "/=",
	DollarAssign: "$=",
	AtAssign:     "@=",
	EqEq:         "==",
	BangEq:       "!=",
	TildeEq:      "~=",
	Lt:           "<",
	LtEq:         "<=",
	Gt:           ">",
	GtEq:         ">=",
	Shl:          "<<",
	Shr:          ">>",
	AndAnd:       "&&",
	OrOr:         "||",
	CaretCaret:   "^^",
	Amp:          "&",
	Pipe:         "|",
	Caret:        "^",
	Bang:         "!",
	Tilde:        "~",
	PlusPlus:     "++",
	MinusMinus:   "--",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	if text, ok := keywordTexts[k]; ok {
		return text
	}
	return "Unknown"
}

// IsLiteral reports whether the token kind is a literal leaf.
func (k Kind) IsLiteral() bool {
	switch k {
	case IntLit, FloatLit, StringLit, NameLit, KwNone, KwTrue, KwFalse:
		return true
	default:
		return false
	}
}

// IsPrimitiveType reports whether the keyword names a built-in value type.
func (k Kind) IsPrimitiveType() bool {
	switch k {
	case KwInt, KwFloat, KwByte, KwBool, KwString, KwName, KwPointer, KwButton:
		return true
	default:
		return false
	}
}
