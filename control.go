package tracing

// Actions understood by HandleCommand.
const (
	ActionStart = "start"
	ActionStop  = "stop"
	ActionList  = "list"
)

// Command is one administrative request from an operator-facing control
// surface (CLI handler, admin endpoint); the surface itself lives outside
// this module.
type Command struct {
	Action      string
	Selector    Selector
	Destination string
}

// CommandStatus classifies the outcome of a Command.
type CommandStatus int8

const (
	StatusOK CommandStatus = iota
	StatusError
	StatusUnsupported
)

func (s CommandStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusError:
		return "error"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// CommandResult answers a Command. Entries is populated for list commands.
type CommandResult struct {
	Status  CommandStatus
	Err     error
	Entries []TraceEntry
}

// HandleCommand dispatches one administrative request to the registry. An
// unrecognized action is logged and answered with an explicit unsupported
// result, never silently dropped.
func (s *Service) HandleCommand(cmd Command) CommandResult {
	switch cmd.Action {
	case ActionStart:
		if err := s.StartTrace(cmd.Selector, cmd.Destination); err != nil {
			return CommandResult{Status: StatusError, Err: err}
		}
		return CommandResult{Status: StatusOK}
	case ActionStop:
		if err := s.StopTrace(cmd.Selector); err != nil {
			return CommandResult{Status: StatusError, Err: err}
		}
		return CommandResult{Status: StatusOK}
	case ActionList:
		return CommandResult{Status: StatusOK, Entries: s.ListTraces()}
	default:
		if s != nil && s.Log != nil {
			s.Log.WarnWith().
				Str("action", cmd.Action).
				Msg("Ignoring unsupported trace command.")
		}
		return CommandResult{Status: StatusUnsupported}
	}
}
