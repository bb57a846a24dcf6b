package utils

import "github.com/mahirjain10/image-upload-lambda/internal/types"

const pattern = "status"

func InitStatusData(fileName string, status string, originalPath string, resizedPath string, format string, errorMsg string) *types.StatusData {
	return &types.StatusData{
		FileName:     fileName,
		Status:       status,
		OriginalPath: originalPath,
		ResizedPath:  resizedPath,
		Format:       format,
		ErrorMsg:     errorMsg,
	}
}

func InitStatusMessage(data *types.StatusData) *types.StatusMessage {
	return &types.StatusMessage{Pattern: pattern, Data: *data}
}
