package token

import "strings"

// Keywords in this dialect are case-insensitive, like identifiers.
var keywords = map[string]Kind{
	"class":             KwClass,
	"extends":           KwExtends,
	"expands":           KwExtends, // legacy spelling
	"within":            KwWithin,
	"const":             KwConst,
	"var":               KwVar,
	"enum":              KwEnum,
	"struct":            KwStruct,
	"state":             KwState,
	"function":          KwFunction,
	"event":             KwEvent,
	"operator":          KwOperator,
	"preoperator":       KwPreOperator,
	"postoperator":      KwPostOperator,
	"delegate":          KwDelegate,
	"local":             KwLocal,
	"replication":       KwReplication,
	"defaultproperties": KwDefaultProperties,
	"ignores":           KwIgnores,

	"native":     KwNative,
	"simulated":  KwSimulated,
	"static":     KwStatic,
	"final":      KwFinal,
	"exec":       KwExec,
	"private":    KwPrivate,
	"protected":  KwProtected,
	"public":     KwPublic,
	"config":     KwConfig,
	"localized":  KwLocalized,
	"transient":  KwTransient,
	"travel":     KwTravel,
	"optional":   KwOptional,
	"out":        KwOut,
	"skip":       KwSkip,
	"coerce":     KwCoerce,
	"reliable":   KwReliable,
	"unreliable": KwUnreliable,
	"dependson":  KwDependsOn,
	"implements": KwImplements,

	"if":       KwIf,
	"else":     KwElse,
	"while":    KwWhile,
	"do":       KwDo,
	"until":    KwUntil,
	"for":      KwFor,
	"foreach":  KwForEach,
	"switch":   KwSwitch,
	"case":     KwCase,
	"default":  KwDefault,
	"return":   KwReturn,
	"goto":     KwGoto,
	"assert":   KwAssert,
	"break":    KwBreak,
	"continue": KwContinue,

	"new":        KwNew,
	"self":       KwSelf,
	"super":      KwSuper,
	"none":       KwNone,
	"true":       KwTrue,
	"false":      KwFalse,
	"vect":       KwVect,
	"rot":        KwRot,
	"rng":        KwRng,
	"arraycount": KwArrayCount,
	"nameof":     KwNameOf,

	"int":     KwInt,
	"float":   KwFloat,
	"byte":    KwByte,
	"bool":    KwBool,
	"string":  KwString,
	"name":    KwName,
	"pointer": KwPointer,
	"button":  KwButton,
	"array":   KwArray,
	"map":     KwMap,

	"begin":  KwBegin,
	"object": KwObject,
	"end":    KwEnd,
}

var keywordTexts = func() map[Kind]string {
	out := make(map[Kind]string, len(keywords))
	for text, kind := range keywords {
		if text == "expands" {
			continue
		}
		out[kind] = text
	}
	return out
}()

// LookupKeyword classifies an identifier spelling, case-insensitively.
// Returns Ident when the text is not a keyword.
func LookupKeyword(text string) Kind {
	if kind, ok := keywords[strings.ToLower(text)]; ok {
		return kind
	}
	return Ident
}
