package observability

import (
	"fmt"
	"strings"

	"github.com/aretw0/axon/pkg/domain"
)

// Policy selects the outcomes that force a timeline export regardless of sampling.
type Policy string

const (
	PolicyOff             Policy = "off"
	PolicyFaultOnly       Policy = "fault_only"
	PolicyFaultBranchEmit Policy = "fault_branch_emit"
	// PolicyDefault forces export on Fault or Branch.
	PolicyDefault Policy = "default"
)

// ParsePolicy reads a policy name. Unknown or empty names yield PolicyDefault.
func ParsePolicy(s string) Policy {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyOff, PolicyFaultOnly, PolicyFaultBranchEmit:
		return p
	default:
		return PolicyDefault
	}
}

// Forces reports whether an execution ending with kind must be exported.
func (p Policy) Forces(kind domain.Kind) bool {
	switch ParsePolicy(string(p)) {
	case PolicyOff:
		return false
	case PolicyFaultOnly:
		return kind == domain.KindFault
	case PolicyFaultBranchEmit:
		return kind == domain.KindFault || kind == domain.KindBranch || kind == domain.KindEmit
	default:
		return kind == domain.KindFault || kind == domain.KindBranch
	}
}

// WriteMode selects how an exported timeline is persisted.
type WriteMode string

const (
	ModeOverwrite WriteMode = "overwrite"
	ModeAppend    WriteMode = "append"
	ModeRotate    WriteMode = "rotate"
)

// ParseWriteMode reads a mode name. Empty selects ModeOverwrite.
func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeOverwrite, nil
	case ModeOverwrite, ModeAppend, ModeRotate:
		return m, nil
	default:
		return "", fmt.Errorf("unknown timeline write mode %q", s)
	}
}
