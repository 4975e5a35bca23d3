package model

// Source represents a file whose tail can be requested by name.
type Source struct {
	Name string `gorm:"primaryKey" validate:"required,excludesall=/"`
	// Path is a local file, optionally gzip-compressed, or s3://bucket/key.
	Path        string `validate:"required"`
	Description string
	// LineLengthGuess overrides the server default when positive.
	LineLengthGuess int `validate:"min=0"`
	// sqlite3 does not have builtin datetime type
	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

// SourceMeta is the last observed state of a Source's file.
type SourceMeta struct {
	Name      string `gorm:"primaryKey"`
	Exists    bool
	Size      int64
	Mtime     int64
	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}
