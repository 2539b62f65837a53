package state

// OverrideStore mirrors the persisted override preferences the popup reacts
// to. It is owned by the UI goroutine and needs no locking.
type OverrideStore interface {
	ActiveUA() string
	SetActiveUA(string)
	SetContainers(map[string]string)
	ContainerUA(id string) string
}

type overrideStore struct {
	active     string
	containers map[string]string
}

func NewOverrideStore() OverrideStore {
	return &overrideStore{containers: map[string]string{}}
}

func (o *overrideStore) ActiveUA() string {
	return o.active
}

func (o *overrideStore) SetActiveUA(ua string) {
	o.active = ua
}

func (o *overrideStore) SetContainers(containers map[string]string) {
	o.containers = cloneContainers(containers)
}

func (o *overrideStore) ContainerUA(id string) string {
	return o.containers[id]
}

func cloneContainers(src map[string]string) map[string]string {
	dup := make(map[string]string, len(src))
	for id, ua := range src {
		dup[id] = ua
	}
	return dup
}
