package events

import "github.com/atomicstack/ua-popup-control/internal/logging"

type PrefsTracer struct{}

type AgentTracer struct{}

var (
	Prefs = PrefsTracer{}
	Agent = AgentTracer{}
)

func (PrefsTracer) Set(keys []string) {
	logging.Trace("prefs.set", map[string]interface{}{"keys": keys})
}

func (PrefsTracer) Delete(key string) {
	logging.Trace("prefs.delete", map[string]interface{}{"key": key})
}

func (PrefsTracer) Dropped(key string) {
	logging.Trace("prefs.dropped", map[string]interface{}{"key": key})
}

func (PrefsTracer) External(key string, revision int64) {
	logging.Trace("prefs.external", map[string]interface{}{"key": key, "revision": revision})
}

func (AgentTracer) Update(value string, window int, container string) {
	logging.Trace("agent.update", map[string]interface{}{"ua": value, "window": window, "container": container})
}

func (AgentTracer) Forget(container string) {
	logging.Trace("agent.forget", map[string]interface{}{"container": container})
}
