package validation

var GetValidators = getValidators

func (c Constraint) GetValidator() (Validator, error) {
	return c.getValidator()
}
