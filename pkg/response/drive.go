package response

type DeleteFilesRequest struct {
	Names []string `json:"names"`
}

// DeleteFilesResult maps every name that could not be deleted to the reason.
type DeleteFilesResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed,omitempty"`
}

// UploadSession is an open chunked upload.
type UploadSession struct {
	UploadID  string `json:"upload_id"`
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	DriveName string `json:"drive_name"`
}

// Upload describes a stored file.
type Upload struct {
	Name      string `json:"name"`
	ProjectID string `json:"project_id"`
	DriveName string `json:"drive_name"`
	Size      int64  `json:"-"`
	Hash      string `json:"-"` // BLAKE3 of the uploaded content, computed locally
	Parts     int    `json:"-"`
}

type UploadPart struct {
	Name      string `json:"name"`
	UploadID  string `json:"upload_id"`
	Part      int    `json:"part"`
	ProjectID string `json:"project_id"`
	DriveName string `json:"drive_name"`
}
