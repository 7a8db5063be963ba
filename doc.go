/*
go-cvtrack detects and tracks a single class of object (human, dog or car)
through a video file and writes a copy of the video annotated with bounding
boxes around everything found.

Detection and tracking is performed by OpenCV through gocv: the HOG pedestrian
descriptor, Haar cascade classifiers, MOG2 background subtraction and KCF
trackers.  This package provides the per frame processing loop, the Detector
interface implemented by the detect subpackage and a Pool of reusable
detectors.  The server subpackage exposes the processing over HTTP.

See the cmd/cvtrack directory for the command line and server program.
*/
package cvtrack
