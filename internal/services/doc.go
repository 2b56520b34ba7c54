// Package services implements the external collaborators of the ingestion pipeline.
//
// # Collaborator Interfaces
//
// The pipeline depends only on three interfaces:
//   - [VideoSource] : metadata extraction, playlist/channel listing and media download
//   - [MediaSink] : hosting of audio and cover files
//   - [Catalog] : the song registry that decides whether a video was already ingested
//
// # yt-dlp
//
// [YTDLPSource] shells out to the yt-dlp binary through a [CommandRunner].
// Listings use flat extraction and are paginated locally with skip/limit.
// Bare playlist ids, channel handles (@name) and bare channel ids are normalised into URLs.
//
// # Cloudinary
//
// [CloudinarySink] uploads audio as a "video" resource under songs/<id> and covers as images under covers/<id>.
// Local files are removed after each upload attempt, whether it succeeded or not.
//
// # Catalog API
//
// [CatalogService] posts to /checkSongExistsByYtId and /addSong through [APIService],
// a raw JSON client with an optional bearer token ([NewHTTPClient]) and optional request pacing.
//
// # Task API Client
//
// [TaskClient] is used by the CLI to submit jobs to, and poll, a running server.
//
// # Error Handling
//
// Adapters wrap typed errors from the shared package:
//   - [shared.ErrExtractFailed] : yt-dlp could not read the URL
//   - [shared.ErrDownloadFailed] : no audio file was produced
//   - [shared.ErrUploadFailed] : the audio upload failed
//   - [shared.ErrPublishFailed] : the catalog rejected the song
//   - [shared.ErrAPIRequest] : an HTTP request failed
package services
