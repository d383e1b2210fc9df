// Command substation is the CLI for the substation subtitle manager:
// searching and downloading subtitles, editing custom score profiles,
// syncing Sonarr and Radarr libraries and translating subtitle files.
package main
