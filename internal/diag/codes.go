package diag

import "fmt"

// Code identifies a diagnostic rule. Ranges: 1xxx lexical, 2xxx syntax,
// 3xxx symbol build/index, 4xxx semantic analysis, 9xxx I/O and internal.
type Code uint16

const (
	UnknownCode Code = 0

	// Lexical.
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexUnterminatedName         Code = 1005

	// Syntax.
	SynUnexpectedToken   Code = 2001
	SynExpectSemicolon   Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectType        Code = 2004
	SynExpectExpression  Code = 2005
	SynUnclosedDelimiter Code = 2006
	SynExpectClass       Code = 2007
	SynDuplicateClass    Code = 2008
	SynBadObjectBlock    Code = 2009

	// Symbol build and index.
	SymMissingFunctionKind Code = 3001
	SymInternalBuildError  Code = 3002

	// Semantic analysis.
	SemaTypeNotFound          Code = 4001
	SemaFieldNotFound         Code = 4002
	SemaClassNameMismatch     Code = 4003
	SemaConstMissingValue     Code = 4004
	SemaArrayBadSize          Code = 4005
	SemaArrayBadElement       Code = 4006
	SemaOptionalParamOrder    Code = 4007
	SemaOperatorNotFinal      Code = 4008
	SemaOperatorArity         Code = 4009
	SemaOperatorPrecedence    Code = 4010
	SemaParamDefaultValue     Code = 4011
	SemaStateExtendsNonState  Code = 4012
	SemaIgnoresUnknownMethod  Code = 4013
	SemaIgnoresFinalMethod    Code = 4014
	SemaReplicationUnknown    Code = 4015
	SemaReplicationInherited  Code = 4016
	SemaReplicationNotMember  Code = 4017
	SemaAssignToConst         Code = 4018
	SemaAssignToFixedArray    Code = 4019
	SemaAssignToNonVariable   Code = 4020
	SemaDuplicateClassName    Code = 4021
	SemaStateIgnoresNonMethod Code = 4022

	// I/O and internal.
	IOLoadFileError Code = 9001
	InternalError   Code = 9101
)

func (c Code) String() string {
	return fmt.Sprintf("US%04d", uint16(c))
}
