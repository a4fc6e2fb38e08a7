// Package ocr binds a text recognition engine and normalizes what it reports.
//
// The package is built around the RecognitionEngine interface. An Adapter
// owns one engine handle, bound lazily through a Loader the first time text is
// requested, and reused by every later call. A failed bind is not remembered:
// the next call tries the Loader again.
//
// # Engines
//
// Two engines ship with the package:
//
//   - Tesseract: local recognition through gosseract. It needs cgo and the
//     Tesseract shared libraries; without cgo its Loader always fails and the
//     Adapter reports ErrEngineUnavailable.
//   - OpenAI: a vision chat model reached through the OpenAI API (or any
//     compatible endpoint). Its Loader fails when no API key is configured.
//
// # Progress
//
// Engines emit native Messages whose fields may be of any type. The Adapter
// turns each one into a Progress value before it reaches the caller's
// ProgressSink:
//
//   - Status is the native status when it is a string, otherwise
//     "recognizing text".
//   - Progress is the native numeric value clamped to [0, 1], otherwise 0.
//
// Messages are delivered synchronously and in emission order. ChannelSink
// blocks the engine while its buffer is full, so nothing is dropped.
//
// # Errors
//
//   - ErrEngineUnavailable (wrapped with the cause) when the engine cannot be
//     bound. No progress is reported in that case.
//   - *RecognitionError when the engine is bound but rejects the image, or the
//     image bytes cannot be read.
//
// # Languages
//
// Languages use Tesseract codes ("eng", "deu", "fra", "chi_sim", ...). The
// default is DefaultLanguage. Tesseract needs the matching traineddata file
// under its tessdata directory (TESSDATA_PREFIX).
package ocr
