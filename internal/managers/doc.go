// Package managers holds thin clients for Sonarr and Radarr. The sync
// command walks their libraries to build the video list substation
// searches subtitles for.
package managers
