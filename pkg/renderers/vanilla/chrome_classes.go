package vanilla

import "github.com/goliatone/go-resourceforms/pkg/focus"

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassPage     ChromeClass = "form-elements-wrp"
	ClassGroup    ChromeClass = "form-group"
	ClassRecord   ChromeClass = "form-wrp"
	ClassField    ChromeClass = ChromeClass(focus.WrapperClass)
	ClassButtons  ChromeClass = "button-wrp"
	ClassError    ChromeClass = "form-error"
	ClassMatrix   ChromeClass = "matrix"
	ClassMatrices ChromeClass = "matrix-list"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"page":     string(ClassPage),
		"group":    string(ClassGroup),
		"record":   string(ClassRecord),
		"field":    string(ClassField),
		"buttons":  string(ClassButtons),
		"error":    string(ClassError),
		"matrix":   string(ClassMatrix),
		"matrices": string(ClassMatrices),
	}
}
