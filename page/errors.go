package page

import "errors"

// ErrCRCMismatch is returned when a page's trailer checksum does not match
// its body. The caller must treat the page as corrupt; there is no repair
// at this layer.
var ErrCRCMismatch = errors.New("flashpage: page checksum mismatch")

// ErrTruncatedPage is returned by NewDataCursor when a data page is too
// short to hold its restart count, or when the restart array it declares
// would extend before the start of the payload. Key and Value also return
// it when the cursor is not positioned at a record.
var ErrTruncatedPage = errors.New("flashpage: truncated page")

// ErrBadVarint is returned when a varint would decode past the bounds of
// the slice it is read from.
var ErrBadVarint = errors.New("flashpage: malformed varint")

// ErrBuilderFinished is returned by Add after Finish has already been
// called on a builder; reusing a finished builder is a contract violation
// and this guard turns it into a returned error instead of silently
// corrupting the next page.
var ErrBuilderFinished = errors.New("flashpage: builder already finished")
