package configurator

// Step is one page of the quote wizard.
type Step string

const (
	StepPreset   Step = "preset"
	StepHardware Step = "hardware"
	StepDigital  Step = "digital"
	StepSummary  Step = "summary"
)

// StepOrder is the default visiting order.
var StepOrder = []Step{StepPreset, StepHardware, StepDigital, StepSummary}

// ParseStep accepts only the four step names.
func ParseStep(s string) (Step, bool) {
	for _, st := range StepOrder {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Index is the position of s in StepOrder, -1 when unknown.
func (s Step) Index() int {
	for i, st := range StepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// StartMode records how the customer began: from an empty slate or from a
// package. Only the advance guard on the first step looks at it.
type StartMode string

const (
	StartModeNone   StartMode = ""
	StartModeCustom StartMode = "custom"
	StartModePreset StartMode = "preset"
)
