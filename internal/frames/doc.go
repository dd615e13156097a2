// Package frames supplies decoded video frames in index order.
//
// A Source yields frames one at a time and reports the end of the stream with
// ErrExhausted; any other error from Next is a decode failure. FFmpegSource
// pipes rgb24 rawvideo out of an ffmpeg child process, DirSource reads a
// sorted directory of still images, and SliceSource serves frames held in
// memory.
package frames
