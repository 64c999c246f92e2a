// Package youtube talks to YouTube: metadata and transcript extraction
// through yt-dlp, and candidate search through either yt-dlp or the
// YouTube Data API.
//
// yt-dlp output is read with gjson rather than decoded into structs; the
// info dictionary is large and only a handful of paths are needed.
package youtube
