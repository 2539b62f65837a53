package events

import "github.com/atomicstack/ua-popup-control/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) Cursor(levelID string, cursor int) {
	logging.Trace("picker.cursor", map[string]interface{}{"level": levelID, "cursor": cursor})
}

func (UITracer) Choose(levelID, ua string) {
	logging.Trace("picker.choose", map[string]interface{}{"level": levelID, "ua": ua})
}

func (UITracer) Focus(target string) {
	logging.Trace("picker.focus", map[string]interface{}{"target": target})
}

func (UITracer) Control(name, value string) {
	logging.Trace("picker.control", map[string]interface{}{"control": name, "value": value})
}

func (UITracer) Toast(message string) {
	logging.Trace("picker.toast", map[string]interface{}{"message": message})
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (FilterTracer) Changed(levelID, filter string, matches int) {
	logging.Trace("filter.change", map[string]interface{}{"level": levelID, "filter": filter, "matches": matches})
}

func (FilterTracer) Cleared(levelID string) {
	logging.Trace("filter.clear", map[string]interface{}{"level": levelID})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label string, err error) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "error": errString(err)})
}
