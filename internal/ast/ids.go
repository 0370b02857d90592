package ast

type (
	FileID uint32
	DeclID uint32
	TypeID uint32
	StmtID uint32
	ExprID uint32
)

const (
	NoFileID FileID = 0
	NoDeclID DeclID = 0
	NoTypeID TypeID = 0
	NoStmtID StmtID = 0
	NoExprID ExprID = 0
)

func (id FileID) IsValid() bool { return id != NoFileID }
func (id DeclID) IsValid() bool { return id != NoDeclID }
func (id TypeID) IsValid() bool { return id != NoTypeID }
func (id StmtID) IsValid() bool { return id != NoStmtID }
func (id ExprID) IsValid() bool { return id != NoExprID }
