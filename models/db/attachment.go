package dbmodels

type Attachment struct {
	BaseModel
	RequestID    string `gorm:"type:varchar(36);index:idx_attachment_request"`
	Name         string `gorm:"type:varchar(255)"`
	Size         int64
	ContentType  string `gorm:"type:varchar(255)"`
	ObjectKey    string `gorm:"type:varchar(512)"`
	UploaderID   string `gorm:"type:varchar(36)"`
	UploaderName string `gorm:"type:varchar(255)"`
}
