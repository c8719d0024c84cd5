// Package validator provides small declarative validation rules for billing
// input: tenant contact data, Brazilian tax documents, postal codes and card
// payloads.
//
// A Rule couples a Check function with translation-friendly error metadata.
// Apply evaluates rules and aggregates failures into ValidationErrors, which
// implements error so a whole form can be rejected in one return:
//
//	err := validator.Apply(
//	    validator.RequiredString("email", t.Email),
//	    validator.ValidEmail("email", t.Email),
//	    validator.ValidTaxDocument("document", t.Document),
//	)
//	if verrs := validator.ExtractValidationErrors(err); verrs != nil {
//	    for _, field := range verrs.Fields() {
//	        // render verrs.Get(field)
//	    }
//	}
//
// Rules are stateless and safe for concurrent use.
package validator
