package workflow

import "fmt"

// Node identifies one stage of the generation graph. Routing decisions
// return Nodes through an explicit table, never raw strings, so a typo can
// not silently route to a dead branch.
type Node int

const (
	NodeEnd Node = iota
	NodeRouteIntent
	NodeAnswerQuestion
	NodeAnalyzeModification
	NodeApplyModification
	NodeBlueprint
	NodeStructure
	NodeCoreFiles
	NodeComponents
	NodePages
	NodeValidate
	NodeRepair
)

var nodeNames = map[Node]string{
	NodeEnd:                 "end",
	NodeRouteIntent:         "route-intent",
	NodeAnswerQuestion:      "answer-question",
	NodeAnalyzeModification: "analyze-modification",
	NodeApplyModification:   "apply-modification",
	NodeBlueprint:           "blueprint",
	NodeStructure:           "structure",
	NodeCoreFiles:           "core-files",
	NodeComponents:          "components",
	NodePages:               "pages",
	NodeValidate:            "validate",
	NodeRepair:              "repair",
}

func (n Node) String() string {
	if name, ok := nodeNames[n]; ok {
		return name
	}
	return fmt.Sprintf("node(%d)", int(n))
}

// Phase labels surfaced through the phase callback. A UI maps these stable
// strings to human text.
const (
	PhaseRouting      = "routing"
	PhaseChat         = "chat"
	PhaseAnalysis     = "analysis"
	PhaseModification = "modification"
	PhaseBlueprint    = "blueprint"
	PhaseStructure    = "structure"
	PhaseCore         = "core"
	PhaseComponents   = "components"
	PhasePages        = "pages"
	PhaseValidation   = "validation"
	PhaseRepair       = "repair"
)
