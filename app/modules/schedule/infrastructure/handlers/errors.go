package schedulehandlers

import "errors"

var errMissingFilename = errors.New("upload needs a multipart file field or a filename query parameter")
