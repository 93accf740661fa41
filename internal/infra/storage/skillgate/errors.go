package skillgate

import "errors"

var (
	// ErrSkillGateNotFound возвращается, когда gate не найден
	ErrSkillGateNotFound = errors.New("skillgate.repository: skill gate not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("skillgate.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("skillgate.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("skillgate.repository: failed to scan row")
)
