package models

// Base is the top-level organizational unit; it scopes what a gym admin may see.
type Base struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Department groups trainees within a base. NumOfPeople is the roster size used to
// normalize entry counts in rankings.
type Department struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	BaseID      string `json:"baseId"`
	NumOfPeople int    `json:"numOfPeople"`
}

// SubDepartment is a child grouping under a department.
type SubDepartment struct {
	ID           string `json:"_id"`
	Name         string `json:"name"`
	DepartmentID string `json:"departmentId"`
}
