package constants

// Language codes the local detector can distinguish. ISO 639-1.
const (
	LangEnglish    = "en"
	LangSpanish    = "es"
	LangFrench     = "fr"
	LangPortuguese = "pt"
	LangArabic     = "ar"
	LangChinese    = "zh"
	LangHaitian    = "ht"
	LangVietnamese = "vi"
)

// JobSource records how a document entered the system.
type JobSource string

const (
	SourceUpload JobSource = "upload"
	SourceEmail  JobSource = "email"
	SourceDrive  JobSource = "drive"
)
