package sema

import (
	"docsema/internal/commands"
	"docsema/internal/comment"
)

// Verdict is the result of an applicability check.
type Verdict uint8

const (
	Applicable Verdict = iota
	NotCallable
	NotTemplate
	VoidResult
)

// CommandValidator holds the per-comment state of singleton commands.
type CommandValidator struct {
	brief   comment.NodeID
	returns comment.NodeID
}

func (v *CommandValidator) Reset() {
	*v = CommandValidator{}
}

// CheckDuplicateSingleton records cmd as the first of its singleton group,
// or returns the command already recorded.
func (v *CommandValidator) CheckDuplicateSingleton(info *commands.Info, cmd comment.NodeID) (prev comment.NodeID, dup bool) {
	var slot *comment.NodeID
	switch info.Singleton {
	case commands.SingletonBrief:
		slot = &v.brief
	case commands.SingletonReturns:
		slot = &v.returns
	default:
		return comment.NoNodeID, false
	}
	if slot.IsValid() && *slot != cmd {
		return *slot, true
	}
	*slot = cmd
	return comment.NoNodeID, false
}

// CheckNonEmptyBody reports false when the command has no body paragraph or
// the body holds only whitespace.
func CheckNonEmptyBody(nodes *comment.Nodes, cmd comment.NodeID) bool {
	b := nodes.BlockOf(cmd)
	if b == nil {
		return true
	}
	return !nodes.IsWhitespace(b.Body)
}

// CheckApplicable matches the command's requirements against the declaration.
// Without an attached declaration everything is applicable.
func CheckApplicable(info *commands.Info, probe *DeclProbe) Verdict {
	if !probe.Attached() {
		return Applicable
	}
	req := info.Requires
	if req.Has(commands.RequiresCallable) && !probe.IsCallable() {
		return NotCallable
	}
	if req.Has(commands.RequiresTemplate) && !probe.IsTemplateOrSpecialization() {
		return NotTemplate
	}
	if req.Has(commands.RequiresNonVoid) && probe.IsCallable() && probe.ReturnsVoid() {
		return VoidResult
	}
	return Applicable
}
