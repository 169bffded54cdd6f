// Package expand classifies video URLs and replaces single remote-playlist
// references with the videos they contain.
//
// Classification is heuristic: URLs whose host and path look like a hosted
// playlist (YouTube list parameters, Odysee playlist paths, PeerTube
// instances) are RemoteCompound, everything else is Direct. The PeerTube rule
// matches any host containing "peertube." and so also matches single videos on
// those instances.
package expand
