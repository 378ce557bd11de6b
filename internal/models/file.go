package models

import "time"

// File es un adjunto subido al almacenamiento local.
// TaskID apunta a la tarea a la que está adjunto (nulo si está suelto
// o si actúa como fichero de resolución, referenciado desde la tarea).
type File struct {
	ID         int64     `json:"id"`
	FileName   string    `json:"file_name"`   // nombre original
	StoredPath string    `json:"stored_path"` // ruta relativa bajo files.root_dir
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	TaskID     *int64    `json:"task_id,omitempty"`
	UploadedBy int64     `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}
