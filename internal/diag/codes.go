package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// IR well-formedness
	IRInfo        Code = 1000
	IRInvalid     Code = 1001
	IRUnknownType Code = 1002

	// observer insertion
	ObsInfo             Code = 2000
	ObsTemplateMissing  Code = 2001
	ObsNonTensorSkipped Code = 2002

	// quant/dequant rewriting
	QntInfo               Code = 3000
	QntUnresolvedObserver Code = 3001
	QntUncalibratedValue  Code = 3002
	QntObserverKept       Code = 3003
	QntObserverOutputUsed Code = 3004

	// calibration dictionary
	CalInfo        Code = 4000
	CalUnusedEntry Code = 4001

	// I/O
	IOLoadFileError Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	IRInfo:                "IR information",
	IRInvalid:             "Graph violates IR invariants",
	IRUnknownType:         "Unknown value type",
	ObsInfo:               "Observer information",
	ObsTemplateMissing:    "No observer template for kind",
	ObsNonTensorSkipped:   "Non-tensor value not observed",
	QntInfo:               "Quantization information",
	QntUnresolvedObserver: "Observer has no calibration entry",
	QntUncalibratedValue:  "Value left unquantized",
	QntObserverKept:       "Unresolved observer kept in graph",
	QntObserverOutputUsed: "Observer output had uses",
	CalInfo:               "Calibration information",
	CalUnusedEntry:        "Calibration entry matched no observer",
	IOLoadFileError:       "I/O load file error",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("QNT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("CAL%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
