package rewrite

// Replace returns a copy of body in which every argument that is the name
// param is replaced by value, at any depth. Set expressions nested in body
// are copied without replacement, so neither the target nor the value of an
// assignment ever sees the parameter. Actions are never replaced. body is
// not modified.
func Replace(body *Expression, param Name, value Symbol) *Expression {
	args := make([]Symbol, len(body.Args))
	for i, arg := range body.Args {
		switch arg := arg.(type) {
		case *Expression:
			if arg.Action == setAction {
				args[i] = arg
				continue
			}
			args[i] = Replace(arg, param, value)
		case Name:
			if arg == param {
				args[i] = value
				continue
			}
			args[i] = arg
		default:
			args[i] = arg
		}
	}
	return &Expression{Action: body.Action, Args: args}
}
