package models

// TaskSummary agrega contadores de tareas para los informes.
type TaskSummary struct {
	Total        int64                `json:"total"`
	ByStatus     map[TaskStatus]int64 `json:"by_status"`
	ByDepartment []DepartmentCount    `json:"by_department"`
	Overdue      int64                `json:"overdue"`
}

type DepartmentCount struct {
	DepartmentID   int64  `json:"department_id"`
	DepartmentName string `json:"department_name"`
	Count          int64  `json:"count"`
}
