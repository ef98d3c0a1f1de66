package diag

import (
	"fmt"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Ссылки на параметры декларации
	RefInfo              Code = 1000
	RefParamNotFound     Code = 1001
	RefParamDuplicate    Code = 1002
	RefTParamNotFound    Code = 1003
	RefTParamDuplicate   Code = 1004
	RefParamMissingName  Code = 1005
	RefTParamMissingName Code = 1006

	// Структура комментария
	DocInfo                  Code = 2000
	DocDuplicateCommand      Code = 2001
	DocEmptyParagraph        Code = 2002
	DocNotCallable           Code = 2003
	DocVoidResult            Code = 2004
	DocNotTemplate           Code = 2005
	DocUnknownCommand        Code = 2006
	DocInvalidDirection      Code = 2007
	DocDirectionWhitespace   Code = 2008
	DocInlineMissingArg      Code = 2009
	DocVerbatimUnterminated  Code = 2010
	DocVerbatimCloseMismatch Code = 2011
	DocBlockMissingArgs      Code = 2012

	// HTML-разметка
	HtmInfo             Code = 3000
	HtmEndForbidden     Code = 3001
	HtmEndUnbalanced    Code = 3002
	HtmStartEndMismatch Code = 3003
	HtmUnclosedTag      Code = 3004

	// Сценарии действий (.dact)
	ScrInfo               Code = 4000
	ScrUnexpectedToken    Code = 4001
	ScrUnknownAction      Code = 4002
	ScrUnterminatedString Code = 4003
	ScrBadDecl            Code = 4004
	ScrActionOrder        Code = 4005
	ScrUnknownChar        Code = 4006
	ScrMissingArgument    Code = 4007
	ScrBadEscape          Code = 4008
	ScrCommandKind        Code = 4009

	IOLoadFileError Code = 5001

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		RefInfo:                  "Reference information",
		RefParamNotFound:         "Parameter not found in declaration",
		RefParamDuplicate:        "Parameter documented more than once",
		RefTParamNotFound:        "Template parameter not found in declaration",
		RefTParamDuplicate:       "Template parameter documented more than once",
		RefParamMissingName:      "Parameter command has no name",
		RefTParamMissingName:     "Template parameter command has no name",
		DocInfo:                  "Comment structure information",
		DocDuplicateCommand:      "Duplicated command",
		DocEmptyParagraph:        "Empty paragraph passed to command",
		DocNotCallable:           "Command needs a function declaration",
		DocVoidResult:            "Command needs a non-void result",
		DocNotTemplate:           "Command needs a template declaration",
		DocUnknownCommand:        "Unknown command",
		DocInvalidDirection:      "Invalid parameter passing direction",
		DocDirectionWhitespace:   "Whitespace in parameter passing direction",
		DocInlineMissingArg:      "Inline command requires an argument",
		DocVerbatimUnterminated:  "Unterminated verbatim block",
		DocVerbatimCloseMismatch: "Verbatim block closed with wrong command",
		DocBlockMissingArgs:      "Block command lacks arguments",
		HtmInfo:                  "Markup information",
		HtmEndForbidden:          "End tag is forbidden",
		HtmEndUnbalanced:         "End tag without start tag",
		HtmStartEndMismatch:      "Start tag closed by different end tag",
		HtmUnclosedTag:           "Unclosed start tag",
		ScrInfo:                  "Script information",
		ScrUnexpectedToken:       "Unexpected token",
		ScrUnknownAction:         "Unknown action",
		ScrUnterminatedString:    "Unterminated string",
		ScrBadDecl:               "Malformed declaration header",
		ScrActionOrder:           "Action out of order",
		ScrUnknownChar:           "Unknown character",
		ScrMissingArgument:       "Missing action argument",
		ScrBadEscape:             "Invalid escape sequence",
		ScrCommandKind:           "Command used with the wrong action",
		IOLoadFileError:          "I/O load file error",
		ObsInfo:                  "Observability information",
		ObsTimings:               "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("REF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("DOC%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("HTM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("SCR%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
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

// ParseCode принимает код в виде ID() ("REF1001") и возвращает известный Code.
func ParseCode(id string) (Code, bool) {
	for c := range codeDescription {
		if c != UnknownCode && strings.EqualFold(c.ID(), id) {
			return c, true
		}
	}
	return UnknownCode, false
}
