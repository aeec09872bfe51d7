package models

// Snapshot is the read-only, session-scoped view of every entity the aggregation layer
// consumes. It is loaded in bulk from the upstream backend, replaced wholesale on
// refresh, and never mutated in place.
type Snapshot struct {
	Trainees       []Trainee
	Entries        []Entry
	Departments    []Department
	SubDepartments []SubDepartment
	Bases          []Base

	traineeByID       map[string]Trainee
	departmentByID    map[string]Department
	subDepartmentByID map[string]SubDepartment
	baseByID          map[string]Base
}

// NewSnapshot builds a snapshot and its lookup indexes.
func NewSnapshot(trainees []Trainee, entries []Entry, departments []Department, subDepartments []SubDepartment, bases []Base) *Snapshot {
	s := &Snapshot{
		Trainees:          trainees,
		Entries:           entries,
		Departments:       departments,
		SubDepartments:    subDepartments,
		Bases:             bases,
		traineeByID:       make(map[string]Trainee, len(trainees)),
		departmentByID:    make(map[string]Department, len(departments)),
		subDepartmentByID: make(map[string]SubDepartment, len(subDepartments)),
		baseByID:          make(map[string]Base, len(bases)),
	}
	for _, t := range trainees {
		s.traineeByID[t.ID] = t
	}
	for _, d := range departments {
		s.departmentByID[d.ID] = d
	}
	for _, sd := range subDepartments {
		s.subDepartmentByID[sd.ID] = sd
	}
	for _, b := range bases {
		s.baseByID[b.ID] = b
	}
	return s
}

// TraineeByID resolves a trainee; ok is false when the id is unknown.
func (s *Snapshot) TraineeByID(id string) (Trainee, bool) {
	t, ok := s.traineeByID[id]
	return t, ok
}

// DepartmentName resolves a department name, degrading to "" on a lookup miss so
// chart labels stay renderable.
func (s *Snapshot) DepartmentName(id string) string {
	return s.departmentByID[id].Name
}

// DepartmentByID resolves a department; ok is false when the id is unknown.
func (s *Snapshot) DepartmentByID(id string) (Department, bool) {
	d, ok := s.departmentByID[id]
	return d, ok
}

// SubDepartmentName resolves a sub-department name, degrading to "" on a miss.
func (s *Snapshot) SubDepartmentName(id string) string {
	return s.subDepartmentByID[id].Name
}

// BaseName resolves a base name, degrading to "" on a miss.
func (s *Snapshot) BaseName(id string) string {
	return s.baseByID[id].Name
}
