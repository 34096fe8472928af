// Package imagefile saves captured frames to disk.
//
// The encoding follows the file extension: .png, .jpg/.jpeg, .bmp or
// .tif/.tiff. Any image.Image works, including *rgb565.Image.
package imagefile
